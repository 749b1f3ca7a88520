package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvanceMatch(t *testing.T) {
	tests := []struct {
		name    string
		state   matchState
		event   matchEvent
		want    matchState
		wantErr bool
	}{
		{"create", statePrompting, eventChooseCreate, stateCreatingAccount, false},
		{"existing", statePrompting, eventChooseExisting, stateMapped, false},
		{"skip", statePrompting, eventChooseSkip, stateSkipped, false},
		{"created", stateCreatingAccount, eventCreateSucceeded, stateMapped, false},
		{"create failed", stateCreatingAccount, eventCreateFailed, statePrompting, false},
		{"prompt cannot succeed creation", statePrompting, eventCreateSucceeded, statePrompting, true},
		{"creating cannot skip", stateCreatingAccount, eventChooseSkip, stateCreatingAccount, true},
		{"mapped is terminal", stateMapped, eventChooseCreate, stateMapped, true},
		{"skipped is terminal", stateSkipped, eventCreateFailed, stateSkipped, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := advanceMatch(tt.state, tt.event)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchStateTerminal(t *testing.T) {
	assert.False(t, statePrompting.terminal())
	assert.False(t, stateCreatingAccount.terminal())
	assert.True(t, stateMapped.terminal())
	assert.True(t, stateSkipped.terminal())
}
