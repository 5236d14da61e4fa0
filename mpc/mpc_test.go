package mpc

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takakv/ristretto-bulletproofs/bperrors"
	"github.com/takakv/ristretto-bulletproofs/curve"
	"github.com/takakv/ristretto-bulletproofs/generators"
	"github.com/takakv/ristretto-bulletproofs/transcript"
)

func runAggregation(t *testing.T, n int, values []uint64) *AggregatedShares {
	t.Helper()
	m := len(values)
	bpGens := generators.NewBulletproofGens("mpc test", 64, 8)
	pcGens := generators.DefaultPedersenGens()
	tr := transcript.New("mpc test")

	dealer, err := NewDealer(bpGens, pcGens, tr, n, m)
	require.NoError(t, err)

	parties := make([]*PartyAwaitingPosition, m)
	blindings := make([]curve.Scalar, m)
	for j, v := range values {
		blindings[j] = curve.MustRandomScalar()
		p, err := NewParty(bpGens, pcGens, v, blindings[j], n)
		require.NoError(t, err)
		parties[j] = p
	}

	bitParties := make([]*PartyAwaitingBitChallenge, m)
	bitCommitments := make([]BitCommitment, m)
	for j, p := range parties {
		next, bc, err := p.AssignPosition(j, rand.Reader)
		require.NoError(t, err)
		bitParties[j] = next
		bitCommitments[j] = bc
	}

	polyDealer, bitChallenge, err := dealer.ReceiveBitCommitments(bitCommitments)
	require.NoError(t, err)

	polyParties := make([]*PartyAwaitingPolyChallenge, m)
	polyCommitments := make([]PolyCommitment, m)
	for j, p := range bitParties {
		next, pc, err := p.ApplyChallenge(bitChallenge, rand.Reader)
		require.NoError(t, err)
		polyParties[j] = next
		polyCommitments[j] = pc
	}

	shareDealer, polyChallenge, err := polyDealer.ReceivePolyCommitments(polyCommitments)
	require.NoError(t, err)

	shares := make([]ProofShare, m)
	for j, p := range polyParties {
		share, err := p.ApplyChallenge(polyChallenge)
		require.NoError(t, err)
		shares[j] = share
	}

	aggregated, err := shareDealer.ReceiveShares(shares)
	require.NoError(t, err)
	return aggregated
}

func TestAggregationProducesMatchingInnerProduct(t *testing.T) {
	aggregated := runAggregation(t, 8, []uint64{5, 200, 17, 42})

	sum := curve.NewScalar()
	for i := range aggregated.L {
		sum = curve.NewScalar().Add(sum, curve.NewScalar().Mul(aggregated.L[i], aggregated.R[i]))
	}
	assert.True(t, sum.IsEqual(aggregated.TX))
}

func TestReceiveSharesDetectsTamperedShare(t *testing.T) {
	n, m := 8, 2
	bpGens := generators.NewBulletproofGens("mpc tamper test", 64, 4)
	pcGens := generators.DefaultPedersenGens()
	tr := transcript.New("mpc tamper test")

	dealer, err := NewDealer(bpGens, pcGens, tr, n, m)
	require.NoError(t, err)

	values := []uint64{3, 9}
	parties := make([]*PartyAwaitingPosition, m)
	for j, v := range values {
		p, err := NewParty(bpGens, pcGens, v, curve.MustRandomScalar(), n)
		require.NoError(t, err)
		parties[j] = p
	}

	bitParties := make([]*PartyAwaitingBitChallenge, m)
	bitCommitments := make([]BitCommitment, m)
	for j, p := range parties {
		next, bc, err := p.AssignPosition(j, rand.Reader)
		require.NoError(t, err)
		bitParties[j] = next
		bitCommitments[j] = bc
	}

	polyDealer, bitChallenge, err := dealer.ReceiveBitCommitments(bitCommitments)
	require.NoError(t, err)

	polyParties := make([]*PartyAwaitingPolyChallenge, m)
	polyCommitments := make([]PolyCommitment, m)
	for j, p := range bitParties {
		next, pc, err := p.ApplyChallenge(bitChallenge, rand.Reader)
		require.NoError(t, err)
		polyParties[j] = next
		polyCommitments[j] = pc
	}

	shareDealer, polyChallenge, err := polyDealer.ReceivePolyCommitments(polyCommitments)
	require.NoError(t, err)

	shares := make([]ProofShare, m)
	for j, p := range polyParties {
		share, err := p.ApplyChallenge(polyChallenge)
		require.NoError(t, err)
		shares[j] = share
	}
	shares[1].TxJ = curve.NewScalar().Add(shares[1].TxJ, curve.ScalarFromUint64(1))

	_, err = shareDealer.ReceiveShares(shares)
	require.Error(t, err)
}

func TestPartyRejectsWrongBitsize(t *testing.T) {
	bpGens := generators.NewBulletproofGens("mpc bitsize test", 64, 1)
	pcGens := generators.DefaultPedersenGens()

	_, err := NewParty(bpGens, pcGens, 7, curve.MustRandomScalar(), 7)
	assert.Error(t, err)
}

// TestNewPartyAllowsOutOfRangeValue confirms NewParty itself never rejects
// v >= 2^n: whether v fits in n bits is the Dealer's job to catch during
// aggregation (see TestReceiveSharesDetectsDishonestParty), not something
// a party's own constructor can be trusted to enforce.
func TestNewPartyAllowsOutOfRangeValue(t *testing.T) {
	bpGens := generators.NewBulletproofGens("mpc oversized value test", 64, 1)
	pcGens := generators.DefaultPedersenGens()

	_, err := NewParty(bpGens, pcGens, ^uint64(0), curve.MustRandomScalar(), 8)
	assert.NoError(t, err)
}

// TestReceiveSharesDetectsDishonestParty mirrors the aggregation protocol's
// canonical malicious-party scenario: parties 1 and 3, out of four, present
// full 64-bit values against n=32 generators. Because NewParty no longer
// gates this, the two dishonest parties reach ReceiveShares, whose
// per-party audit (auditShare) must single them out by index.
func TestReceiveSharesDetectsDishonestParty(t *testing.T) {
	n, m := 32, 4
	bpGens := generators.NewBulletproofGens("mpc dishonest test", 64, 4)
	pcGens := generators.DefaultPedersenGens()
	tr := transcript.New("mpc dishonest test")

	dealer, err := NewDealer(bpGens, pcGens, tr, n, m)
	require.NoError(t, err)

	values := []uint64{
		5,
		0xFFFFFFFFFFFFFFF3, // exceeds 2^32, dishonest
		17,
		0xFFFFFFFF00000001, // exceeds 2^32, dishonest
	}

	parties := make([]*PartyAwaitingPosition, m)
	for j, v := range values {
		p, err := NewParty(bpGens, pcGens, v, curve.MustRandomScalar(), n)
		require.NoError(t, err)
		parties[j] = p
	}

	bitParties := make([]*PartyAwaitingBitChallenge, m)
	bitCommitments := make([]BitCommitment, m)
	for j, p := range parties {
		next, bc, err := p.AssignPosition(j, rand.Reader)
		require.NoError(t, err)
		bitParties[j] = next
		bitCommitments[j] = bc
	}

	polyDealer, bitChallenge, err := dealer.ReceiveBitCommitments(bitCommitments)
	require.NoError(t, err)

	polyParties := make([]*PartyAwaitingPolyChallenge, m)
	polyCommitments := make([]PolyCommitment, m)
	for j, p := range bitParties {
		next, pc, err := p.ApplyChallenge(bitChallenge, rand.Reader)
		require.NoError(t, err)
		polyParties[j] = next
		polyCommitments[j] = pc
	}

	shareDealer, polyChallenge, err := polyDealer.ReceivePolyCommitments(polyCommitments)
	require.NoError(t, err)

	shares := make([]ProofShare, m)
	for j, p := range polyParties {
		share, err := p.ApplyChallenge(polyChallenge)
		require.NoError(t, err)
		shares[j] = share
	}

	_, err = shareDealer.ReceiveShares(shares)
	require.Error(t, err)
	var malformed *bperrors.MalformedProofSharesError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, []int{1, 3}, malformed.BadShares)
}

func TestPartyRejectsZeroChallenge(t *testing.T) {
	bpGens := generators.NewBulletproofGens("mpc zero test", 8, 1)
	pcGens := generators.DefaultPedersenGens()

	p, err := NewParty(bpGens, pcGens, 7, curve.MustRandomScalar(), 8)
	require.NoError(t, err)
	bitParty, _, err := p.AssignPosition(0, rand.Reader)
	require.NoError(t, err)
	polyParty, _, err := bitParty.ApplyChallenge(BitChallenge{Y: curve.MustRandomScalar(), Z: curve.MustRandomScalar()}, rand.Reader)
	require.NoError(t, err)

	_, err = polyParty.ApplyChallenge(PolyChallenge{X: curve.NewScalar()})
	assert.Error(t, err)
}
