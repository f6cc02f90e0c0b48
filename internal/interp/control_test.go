package interp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsCtrlFlowExtractsTypedValue(t *testing.T) {
	var err error = &ctrlFlow{kind: ctrlBreak, n: 2}

	cf, ok := asCtrlFlow(err)
	assert.True(t, ok)
	assert.Equal(t, ctrlBreak, cf.kind)
	assert.Equal(t, 2, cf.n)
}

func TestAsCtrlFlowRejectsOrdinaryErrors(t *testing.T) {
	_, ok := asCtrlFlow(errors.New("boom"))
	assert.False(t, ok)
}

func TestCtrlFlowErrorMessagesNameTheBuiltin(t *testing.T) {
	cases := map[ctrlKind]string{
		ctrlBreak:    "break",
		ctrlContinue: "continue",
		ctrlReturn:   "return",
		ctrlExit:     "exit",
	}
	for kind, want := range cases {
		cf := &ctrlFlow{kind: kind}
		assert.Equal(t, want, cf.Error())
	}
}
