package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReport_Success(t *testing.T) {
	var r Report
	assert.True(t, r.Success())

	r.Warn("a.zip", "no files found in %s", "temp/Weapons")
	assert.True(t, r.Success())

	r.Error("b.zip", "error unzipping %s", "b.zip")
	assert.False(t, r.Success())
	assert.Equal(t, 1, r.Count(SeverityWarning))
	assert.Equal(t, 1, r.Count(SeverityError))

	assert.Equal(t, "warning: [a.zip] no files found in temp/Weapons", r.Messages[0].String())
}

func TestReport_Fatal(t *testing.T) {
	var r Report
	r.Fatal("game directory %s does not exist", "/x")
	assert.False(t, r.Success())
	assert.Equal(t, "fatal: game directory /x does not exist", r.Messages[0].String())
}

func TestInstructionSet(t *testing.T) {
	var s InstructionSet
	assert.True(t, s.Empty())

	s.AddSubfolder("player")
	s.AddSubfolder("player")
	s.SetMapping("Weapons", "player")
	s.SetMapping("Armor", "player")
	s.SetMapping("Weapons", "vehicles")

	assert.Equal(t, []string{"player"}, s.Subfolders)
	assert.Equal(t, []FolderMapping{{"Weapons", "vehicles"}, {"Armor", "player"}}, s.Mappings)
	dest, ok := s.Mapping("Weapons")
	assert.True(t, ok)
	assert.Equal(t, "vehicles", dest)
	_, ok = s.Mapping("weapons")
	assert.False(t, ok)
	assert.False(t, s.Empty())
}
