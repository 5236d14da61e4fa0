package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/takakv/ristretto-bulletproofs/curve"
)

func TestChallengesAreDeterministic(t *testing.T) {
	tr1 := New("test transcript")
	tr1.AppendMessage("msg", []byte("hello"))
	c1 := tr1.ChallengeScalar("c")

	tr2 := New("test transcript")
	tr2.AppendMessage("msg", []byte("hello"))
	c2 := tr2.ChallengeScalar("c")

	assert.True(t, c1.IsEqual(c2))
}

func TestChallengesDivergeOnDifferentMessages(t *testing.T) {
	tr1 := New("test transcript")
	tr1.AppendMessage("msg", []byte("hello"))
	c1 := tr1.ChallengeScalar("c")

	tr2 := New("test transcript")
	tr2.AppendMessage("msg", []byte("goodbye"))
	c2 := tr2.ChallengeScalar("c")

	assert.False(t, c1.IsEqual(c2))
}

func TestChallengesDivergeOnDifferentLabels(t *testing.T) {
	tr1 := New("test transcript")
	tr1.AppendMessage("msg", []byte("hello"))
	c1 := tr1.ChallengeScalar("c1")

	tr2 := New("test transcript")
	tr2.AppendMessage("msg", []byte("hello"))
	c2 := tr2.ChallengeScalar("c2")

	assert.False(t, c1.IsEqual(c2))
}

func TestCloneDoesNotAdvanceOriginal(t *testing.T) {
	tr := New("test transcript")
	tr.AppendMessage("msg", []byte("hello"))

	clone := tr.Clone()
	_ = clone.ChallengeScalar("c")

	want := New("test transcript")
	want.AppendMessage("msg", []byte("hello"))
	c := tr.ChallengeScalar("c")
	wantC := want.ChallengeScalar("c")

	assert.True(t, c.IsEqual(wantC))
}

func TestAppendPointBindsEncoding(t *testing.T) {
	tr1 := New("test transcript")
	tr1.AppendPoint("P", curve.BasePoint())
	c1 := tr1.ChallengeScalar("c")

	tr2 := New("test transcript")
	tr2.AppendPoint("P", curve.Identity())
	c2 := tr2.ChallengeScalar("c")

	assert.False(t, c1.IsEqual(c2))
}
