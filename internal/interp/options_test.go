package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionsSetByShortLetterAndLongName(t *testing.T) {
	o := &Options{}

	assert.True(t, o.SetByShortLetter('e', true))
	assert.True(t, o.ErrExit)

	assert.True(t, o.SetByLongName("pipefail", true))
	assert.True(t, o.PipeFail)

	assert.False(t, o.SetByShortLetter('Z', true), "unrecognized short letters report false")
	assert.False(t, o.SetByLongName("nosuchoption", true))
}

func TestOptionsCloneIsIndependent(t *testing.T) {
	o := &Options{ErrExit: true}
	cp := o.Clone()
	cp.ErrExit = false

	assert.True(t, o.ErrExit)
	assert.False(t, cp.ErrExit)
}

func TestOptionsFlagsOrderMatchesShortLetterOrder(t *testing.T) {
	o := &Options{Xtrace: true, AllExport: true, ErrExit: true}
	assert.Equal(t, "aex", o.Flags())
}

func TestOptionsNamesOnOnlyFiltersToSetOptions(t *testing.T) {
	o := &Options{NoGlob: true, Monitor: true}
	names := o.Names(true)
	assert.ElementsMatch(t, []string{"noglob", "monitor"}, names)

	all := o.Names(false)
	assert.Len(t, all, 12)
}
