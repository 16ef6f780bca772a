package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type producerSettings struct {
	codec     string
	threshold int
	calls     []string
}

func withThreshold(n int) Option[*producerSettings] {
	return New(func(s *producerSettings) error {
		if n < 0 {
			return errors.New("threshold cannot be negative")
		}
		s.threshold = n
		s.calls = append(s.calls, "threshold")

		return nil
	})
}

func withCodec(name string) Option[*producerSettings] {
	return NoError(func(s *producerSettings) {
		s.codec = name
		s.calls = append(s.calls, "codec")
	})
}

func TestApply_InOrder(t *testing.T) {
	s := &producerSettings{}

	err := Apply(s, withCodec("ZstdHigh"), withThreshold(128), withCodec("LZ4Fast"))
	require.NoError(t, err)
	require.Equal(t, "LZ4Fast", s.codec)
	require.Equal(t, 128, s.threshold)
	require.Equal(t, []string{"codec", "threshold", "codec"}, s.calls)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	s := &producerSettings{}

	err := Apply(s, withThreshold(-1), withCodec("S2"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "negative")
	require.Empty(t, s.codec, "options after a failure must not run")
}

func TestApply_SkipsNil(t *testing.T) {
	s := &producerSettings{}

	require.NoError(t, Apply[*producerSettings](s, nil, withCodec("None")))
	require.Equal(t, "None", s.codec)
}

func TestApply_Empty(t *testing.T) {
	require.NoError(t, Apply(&producerSettings{}))
}

func TestApply_NilFunc(t *testing.T) {
	var unset Func[*producerSettings]
	s := &producerSettings{}

	require.NoError(t, Apply[*producerSettings](s, unset, withCodec("S2")))
	require.Equal(t, []string{"codec"}, s.calls)
}
