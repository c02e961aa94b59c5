package forme

import "strings"

// FocusTarget is one entry in the focus list: a Leaf or Group node,
// addressed by id for stable lookup after a rebuild (§3/§4.2).
type FocusTarget struct {
	ID NodeId
}

// FocusEngine computes and maintains the focus target list over the
// active scope's render tree, and owns the at-most-one CompletionSession
// (§4.2).
type FocusEngine struct {
	targets []FocusTarget
	index   int

	session *CompletionSession
}

// NewFocusEngine creates an empty focus engine.
func NewFocusEngine() *FocusEngine { return &FocusEngine{} }

// Rebuild walks scope's render tree in document order, collecting every
// Leaf and Group node as a focus target and skipping Containers and
// Outputs (§4.2). It is called on scope change, overlay open/close, step
// advance, and explicit rebuild requests.
func (fe *FocusEngine) Rebuild(scope []Widget) {
	prevID := fe.currentID()
	fe.targets = fe.targets[:0]
	var walk func(nodes []Widget)
	walk = func(nodes []Widget) {
		for _, n := range nodes {
			switch n.FocusBehavior() {
			case Leaf, Group:
				fe.targets = append(fe.targets, FocusTarget{ID: n.ID()})
				if n.FocusBehavior() == Group {
					continue // never traverse into a Group's children for Tab
				}
			case Container:
				walk(n.RenderChildren())
			}
		}
	}
	walk(scope)

	fe.index = 0
	if prevID != "" {
		for i, t := range fe.targets {
			if t.ID == prevID {
				fe.index = i
				break
			}
		}
	}
	fe.session = nil // scope change always destroys any completion session
}

func (fe *FocusEngine) currentID() NodeId {
	if fe.index < 0 || fe.index >= len(fe.targets) {
		return ""
	}
	return fe.targets[fe.index].ID
}

// Current returns the currently focused target id, or "" if the list is
// empty.
func (fe *FocusEngine) Current() NodeId { return fe.currentID() }

// Targets returns the current focus target list (a copy is not made;
// callers must not mutate it).
func (fe *FocusEngine) Targets() []FocusTarget { return fe.targets }

// Next advances the focus index modulo the target list length (§4.2).
// Destroys any active completion session (focus change, per §3).
func (fe *FocusEngine) Next() {
	fe.session = nil
	if len(fe.targets) == 0 {
		return
	}
	fe.index = (fe.index + 1) % len(fe.targets)
}

// Prev decrements the focus index with wrap.
func (fe *FocusEngine) Prev() {
	fe.session = nil
	if len(fe.targets) == 0 {
		return
	}
	fe.index = (fe.index - 1 + len(fe.targets)) % len(fe.targets)
}

// FocusID moves focus directly to id if it is a live target, restoring
// it (used by overlay AfterClose). Returns false if id is not a current
// target.
func (fe *FocusEngine) FocusID(id NodeId) bool {
	for i, t := range fe.targets {
		if t.ID == id {
			fe.index = i
			fe.session = nil
			return true
		}
	}
	return false
}

// FocusFirst moves focus to the first target, used when a snapshot
// restore target is no longer live (§4.3 AfterClose).
func (fe *FocusEngine) FocusFirst() {
	fe.index = 0
	fe.session = nil
}

// ----------------------------------------------------------------------
// Completion sessions (§3, §4.2 transition table)
// ----------------------------------------------------------------------

// CompletionSession is transient state on a focused input enabling
// Tab-cycled candidate substitution on the cursor token (§3).
type CompletionSession struct {
	OwnerID        NodeId
	OriginalPrefix string
	Candidates     []string
	CursorIndex    int
}

// Session returns the active completion session, or nil.
func (fe *FocusEngine) Session() *CompletionSession { return fe.session }

// TryCompleteFocused implements the Tab/BackTab create-or-cycle step of
// the §4.2 transition table in one call, grounded on original_source's
// `state/app_state/completion.rs::try_complete_focused`: if a session is
// already active on owner and the token at the cursor still equals the
// candidate that session last substituted, the press continues that
// session (cycling forward, or backward when reverse); otherwise any
// prior session is discarded and a fresh one is computed from scratch
// against the current token. ok is false (any stale session cleared)
// when owner has no token or no candidate matches it, letting the caller
// fall back to ordinary focus traversal.
func (fe *FocusEngine) TryCompleteFocused(owner NodeId, token string, all []string, reverse bool) (candidate string, ok bool) {
	if fe.session != nil && fe.session.OwnerID == owner && token != "" &&
		fe.session.Candidates[fe.session.CursorIndex] == token {
		n := len(fe.session.Candidates)
		if reverse {
			fe.session.CursorIndex = (fe.session.CursorIndex - 1 + n) % n
		} else {
			fe.session.CursorIndex = (fe.session.CursorIndex + 1) % n
		}
		return fe.session.Candidates[fe.session.CursorIndex], true
	}

	matches := completionMatches(all, token)
	if len(matches) == 0 {
		fe.session = nil
		return "", false
	}
	index := 0
	if reverse {
		index = len(matches) - 1
	}
	fe.session = &CompletionSession{OwnerID: owner, OriginalPrefix: token, Candidates: matches, CursorIndex: index}
	return matches[index], true
}

// completionMatches returns the case-insensitive-prefix subset of all
// matching token, deduplicated and order-preserving, or nil for an empty
// token — matching original_source's `completion_matches`.
func completionMatches(all []string, token string) []string {
	if token == "" {
		return nil
	}
	lower := strings.ToLower(token)
	var out []string
	for _, c := range all {
		if !strings.HasPrefix(strings.ToLower(c), lower) {
			continue
		}
		seen := false
		for _, o := range out {
			if o == c {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, c)
		}
	}
	return out
}

// CancelCompletion destroys the session, retaining the input's current
// value (non-matching key, or explicit cancel).
func (fe *FocusEngine) CancelCompletion() { fe.session = nil }

// CommitCompletion destroys the session after the caller has written the
// chosen candidate into the node's value.
func (fe *FocusEngine) CommitCompletion() { fe.session = nil }
