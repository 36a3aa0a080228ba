package ledger

import (
	"github.com/amonks/cohort/internal/validation"
	"github.com/amonks/cohort/schedule"
)

// Kind names one of the three families of collection forms.
type Kind string

const (
	// KindClass is a per-session attendance form.
	KindClass Kind = "class"

	// KindCDS is a form asking students for their CDS weekday.
	KindCDS Kind = "cds"

	// KindUpdate is an onboarding form that adds or updates students.
	KindUpdate Kind = "update"
)

// ValidKinds returns all artifact kinds.
func ValidKinds() []Kind {
	return []Kind{KindClass, KindCDS, KindUpdate}
}

// IsValid returns true if the kind is a known value.
func (k Kind) IsValid() bool {
	for _, valid := range ValidKinds() {
		if k == valid {
			return true
		}
	}
	return false
}

// ParseKind validates a kind name.
func ParseKind(value string) (Kind, error) {
	kind := Kind(value)
	if !kind.IsValid() {
		return "", validation.FormatInvalidValueError(ErrUnknownKind, kind, ValidKinds())
	}
	return kind, nil
}

// Artifact identifies one form issued through the form service.
type Artifact struct {
	ID    string        `json:"id"`
	Title string        `json:"title,omitempty"`
	URL   string        `json:"url,omitempty"`
	Date  schedule.Date `json:"date"`
}

// registry tracks issued and recorded artifacts of one kind, keyed by ID.
// Recorded artifacts are always a subset of issued ones.
type registry struct {
	kind     Kind
	issued   []Artifact
	byID     map[string]int
	recorded []string
	done     map[string]bool
}

func newRegistry(kind Kind) *registry {
	return &registry{
		kind: kind,
		byID: make(map[string]int),
		done: make(map[string]bool),
	}
}

func (r *registry) isIssued(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// issue adds an artifact. Re-issuing a known ID is a no-op.
func (r *registry) issue(a Artifact) bool {
	if r.isIssued(a.ID) {
		return false
	}
	r.byID[a.ID] = len(r.issued)
	r.issued = append(r.issued, a)
	return true
}

// record moves an issued artifact to the recorded set.
func (r *registry) record(id string) bool {
	if !r.isIssued(id) {
		panic(&ArtifactIntegrityError{Kind: r.kind, ID: id})
	}
	if r.done[id] {
		return false
	}
	r.done[id] = true
	r.recorded = append(r.recorded, id)
	return true
}

func (r *registry) available() []Artifact {
	var out []Artifact
	for _, a := range r.issued {
		if !r.done[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

func (r *registry) recordedArtifacts() []Artifact {
	out := make([]Artifact, 0, len(r.recorded))
	for _, id := range r.recorded {
		out = append(out, r.issued[r.byID[id]])
	}
	return out
}
