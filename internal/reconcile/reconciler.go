// Package reconcile merges authoritative store snapshots with an
// optimistically-mutated local plan snapshot. Every mutation runs through a
// three-state machine (Pending, Committed, RolledBack) and is serialized per
// subtree by a monotonically increasing revision token; responses carrying a
// stale token are discarded so the view never regresses to older data.
package reconcile

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"stratplan-backend/internal/domain"
)

// Mutation states.
type State string

const (
	// Pending means the optimistic patch is applied and the store call is in
	// flight.
	Pending State = "pending"
	// Committed means the store accepted; the target subtree was replaced
	// with authoritative data, every other branch untouched.
	Committed State = "committed"
	// RolledBack means the store rejected; the exact pre-mutation snapshot
	// was restored.
	RolledBack State = "rolled_back"
)

var (
	// ErrSuperseded is returned when a response arrives for a mutation that a
	// newer mutation on the same subtree has already replaced.
	ErrSuperseded = errors.New("mutation superseded by a newer revision")
	// ErrNotPending is returned when Commit or Rollback is called twice.
	ErrNotPending = errors.New("mutation is not pending")
)

// Patch mutates a plan snapshot in place. Begin applies it optimistically;
// Commit applies the authoritative replacement the same way.
type Patch func(*domain.Plan)

// Reconciler owns the single mutable plan snapshot for one viewing session.
// All other engine components are pure readers of what Snapshot returns.
type Reconciler struct {
	mu       sync.Mutex
	snapshot *domain.Plan
	revs     map[string]uint64
}

// New wraps an initial authoritative snapshot.
func New(initial *domain.Plan) *Reconciler {
	return &Reconciler{
		snapshot: initial.Clone(),
		revs:     make(map[string]uint64),
	}
}

// Snapshot returns a deep copy of the current view for readers.
func (r *Reconciler) Snapshot() *domain.Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot.Clone()
}

// Revision returns the current revision token for a subtree.
func (r *Reconciler) Revision(subtreeID string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.revs[subtreeID]
}

// Mutation tracks one optimistic change from Begin until Commit or Rollback.
type Mutation struct {
	r         *Reconciler
	subtreeID string
	rev       uint64
	before    *domain.Plan
	state     State
}

// Begin snapshots the current tree, applies the optimistic patch, and bumps
// the subtree's revision token. An in-flight older mutation on the same
// subtree is thereby superseded: its eventual response will be discarded.
func (r *Reconciler) Begin(subtreeID string, patch Patch) *Mutation {
	r.mu.Lock()
	defer r.mu.Unlock()
	before := r.snapshot.Clone()
	if patch != nil {
		patch(r.snapshot)
	}
	r.revs[subtreeID]++
	return &Mutation{
		r:         r,
		subtreeID: subtreeID,
		rev:       r.revs[subtreeID],
		before:    before,
		state:     Pending,
	}
}

// State reports where the mutation is in its lifecycle.
func (m *Mutation) State() State {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	return m.state
}

// Revision returns the token this mutation was tagged with.
func (m *Mutation) Revision() uint64 { return m.rev }

// Commit replaces the target subtree with the authoritative replacement. The
// replacement is dropped when a newer mutation has bumped the subtree's
// revision in the interim.
func (m *Mutation) Commit(replace Patch) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if m.state != Pending {
		return ErrNotPending
	}
	if m.r.revs[m.subtreeID] != m.rev {
		m.state = Committed
		return ErrSuperseded
	}
	if replace != nil {
		replace(m.r.snapshot)
	}
	m.state = Committed
	return nil
}

// Rollback restores the target subtree to its pre-mutation state captured at
// Begin, leaving every other branch of the current snapshot untouched so
// pending mutations on other subtrees keep their optimistic state. When a
// newer mutation has taken over the subtree, the restore is skipped so the
// newer mutation's state is not clobbered.
func (m *Mutation) Rollback() error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if m.state != Pending {
		return ErrNotPending
	}
	if m.r.revs[m.subtreeID] == m.rev {
		if !restoreActivity(m.r.snapshot, m.before, m.subtreeID) {
			m.r.snapshot = m.before
		}
	}
	m.state = RolledBack
	return nil
}

// restoreActivity swaps the main activity identified by subtreeID back to its
// state in before. An activity the patch removed is re-inserted under its
// initiative; one the patch created is dropped again. Returns false when the
// id cannot be resolved to an activity branch, in which case the caller falls
// back to a full snapshot restore.
func restoreActivity(current, before *domain.Plan, subtreeID string) bool {
	id, err := uuid.Parse(subtreeID)
	if err != nil {
		return false
	}
	prev := findActivity(before, id)
	if prev == nil {
		removeActivity(current, id)
		return true
	}
	if cur := findActivity(current, id); cur != nil {
		*cur = *prev.Clone()
		return true
	}
	return insertActivity(current, prev.Clone())
}

func findActivity(p *domain.Plan, id uuid.UUID) *domain.MainActivity {
	if p == nil {
		return nil
	}
	for oi := range p.Objectives {
		for ii := range p.Objectives[oi].Initiatives {
			acts := p.Objectives[oi].Initiatives[ii].MainActivities
			for ai := range acts {
				if acts[ai].ActivityID == id {
					return &acts[ai]
				}
			}
		}
	}
	return nil
}

func removeActivity(p *domain.Plan, id uuid.UUID) {
	for oi := range p.Objectives {
		for ii := range p.Objectives[oi].Initiatives {
			init := &p.Objectives[oi].Initiatives[ii]
			for ai := range init.MainActivities {
				if init.MainActivities[ai].ActivityID == id {
					init.MainActivities = append(init.MainActivities[:ai], init.MainActivities[ai+1:]...)
					return
				}
			}
		}
	}
}

func insertActivity(p *domain.Plan, a *domain.MainActivity) bool {
	for oi := range p.Objectives {
		for ii := range p.Objectives[oi].Initiatives {
			init := &p.Objectives[oi].Initiatives[ii]
			if init.InitiativeID == a.InitiativeID {
				init.MainActivities = append(init.MainActivities, *a)
				return true
			}
		}
	}
	return false
}

// Refresh applies a delayed background re-fetch of a subtree (store-side
// computed totals and the like). It is discarded unless rev still matches the
// subtree's current revision: last writer wins.
func (r *Reconciler) Refresh(subtreeID string, rev uint64, replace Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revs[subtreeID] != rev {
		return ErrSuperseded
	}
	if replace != nil {
		replace(r.snapshot)
	}
	return nil
}
