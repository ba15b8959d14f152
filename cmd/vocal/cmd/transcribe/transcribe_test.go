package transcribe

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocal-assistant/internal/app/pipeline"
)

func newFlagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "speech_to_text"}
	cmd.Flags().BoolVar(&chain, "chain", false, "")
	require.NoError(t, cmd.Flags().Parse(args))
	t.Cleanup(func() { chain = false })
	return cmd
}

func TestApplyChainFlag(t *testing.T) {
	testCases := []struct {
		name       string
		configured bool
		args       []string
		want       bool
	}{
		{"config on, flag unset", true, nil, true},
		{"config off, flag unset", false, nil, false},
		{"config off, --chain", false, []string{"--chain"}, true},
		{"config on, --chain=false", true, []string{"--chain=false"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			o := pipeline.NewOrchestrator(pipeline.Deps{}, pipeline.Options{ChainAfterTranscription: tc.configured})
			got := applyChainFlag(newFlagCmd(t, tc.args...), o)
			assert.Equal(t, tc.want, got.Chaining())
			assert.Equal(t, tc.configured, o.Chaining())
		})
	}
}
