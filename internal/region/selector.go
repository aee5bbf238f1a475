// Package region implements the cascading administrative-area picker:
// a 4-level province→regency→district→village drill-down with breadcrumb
// navigation, inline retry and stale-fetch protection.
package region

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/arsipak/admin-bff-go/internal/domain"
)

// FetchFunc loads every child of (level, parentCode). parentCode is empty
// for level 1.
type FetchFunc func(ctx context.Context, level int, parentCode string) ([]domain.Region, error)

// CommitFunc observes committed-value changes. It receives a complete
// 4-level path on commit and nil when the selection is cleared. It is
// called with the selector lock held and must not call back in.
type CommitFunc func(path domain.RegionPath)

// Selector is the picker state machine. A committed value is always
// either nil or a complete valid 4-level path; partial selections live
// only in the breadcrumb.
//
// Invariant: while browsing level L the breadcrumb holds L-1 regions;
// once a village is selected it holds L (and the value is committed).
type Selector struct {
	mu       sync.Mutex
	fetch    FetchFunc
	onCommit CommitFunc

	level      int
	breadcrumb domain.RegionPath
	options    []domain.Region
	query      string
	loading    bool
	lastErr    error
	committed  domain.RegionPath

	// generation stamps each navigation; a fetch started under an older
	// generation discards its result instead of clobbering newer state.
	generation uint64
}

// NewSelector creates a selector at the initial state (level 1, nothing
// committed). Call Open to load the first level.
func NewSelector(fetch FetchFunc, onCommit CommitFunc) *Selector {
	return &Selector{fetch: fetch, onCommit: onCommit, level: domain.LevelProvince}
}

// Open loads the province options.
func (s *Selector) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx)
}

// Select chooses one of the currently visible options by region id.
// Selecting at levels 1–3 descends into the children; selecting a village
// completes the path and commits it.
func (s *Selector) Select(ctx context.Context, regionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading {
		return &domain.ErrValidation{Field: "region", Message: "options are still loading"}
	}
	if s.lastErr != nil {
		return &domain.ErrValidation{Field: "region", Message: "options failed to load, retry first"}
	}

	var picked *domain.Region
	for i := range s.options {
		if s.options[i].ID == regionID {
			picked = &s.options[i]
			break
		}
	}
	if picked == nil {
		return &domain.ErrNotFound{Resource: "region option", ID: strconv.FormatInt(regionID, 10)}
	}

	// Re-selecting at the current level replaces the previous pick.
	if len(s.breadcrumb) == s.level {
		s.breadcrumb = s.breadcrumb[:len(s.breadcrumb)-1]
	}
	s.breadcrumb = append(s.breadcrumb, *picked)
	s.query = ""

	if picked.Level == domain.LevelVillage {
		s.commit()
		return nil
	}

	s.level++
	return s.reload(ctx)
}

// Back moves up one step: a committed or terminal selection is undone
// first, then each further call climbs one level until the initial state.
// Backing out of a committed value emits a nil commit exactly once.
func (s *Selector) Back(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.uncommit()

	if len(s.breadcrumb) == 0 {
		return nil
	}
	if len(s.breadcrumb) == s.level {
		// Drop the terminal pick, stay on the same level.
		s.breadcrumb = s.breadcrumb[:len(s.breadcrumb)-1]
	} else {
		s.breadcrumb = s.breadcrumb[:len(s.breadcrumb)-1]
		s.level--
	}
	s.query = ""
	return s.reload(ctx)
}

// Clear resets the picker to the initial state. Clearing a committed
// value emits a nil commit; clearing again is a no-op apart from the
// reload, so observers see a single emission.
func (s *Selector) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.uncommit()
	s.breadcrumb = nil
	s.level = domain.LevelProvince
	s.query = ""
	return s.reload(ctx)
}

// Resume seeds the picker from an existing committed value, e.g. when
// editing a record that already has an address. The path must be a
// complete valid chain. No commit is emitted: resuming is not a change.
func (s *Selector) Resume(ctx context.Context, path domain.RegionPath) error {
	if !path.Complete() {
		return &domain.ErrValidation{Field: "path", Message: "resume requires a complete 4-level path"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.breadcrumb = append(domain.RegionPath(nil), path...)
	s.committed = append(domain.RegionPath(nil), path...)
	s.level = domain.LevelVillage
	s.query = ""
	return s.reload(ctx)
}

// Retry refetches the current level after a load failure.
func (s *Selector) Retry(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx)
}

// Search sets the case-insensitive substring filter, matched against
// the name or code of the visible options. Filtering is local; no fetch
// happens.
func (s *Selector) Search(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = strings.ToLower(strings.TrimSpace(query))
}

// Committed returns a copy of the committed path, or nil.
func (s *Selector) Committed() domain.RegionPath {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.committed == nil {
		return nil
	}
	return append(domain.RegionPath(nil), s.committed...)
}

// View is a serializable snapshot of the picker state.
type View struct {
	Level      int               `json:"level"`
	LevelLabel string            `json:"level_label"`
	Breadcrumb domain.RegionPath `json:"breadcrumb"`
	Options    []domain.Region   `json:"options"`
	Query      string            `json:"query,omitempty"`
	Loading    bool              `json:"loading"`
	Error      string            `json:"error,omitempty"`
	Committed  domain.RegionPath `json:"committed,omitempty"`
}

// Snapshot returns the current state with the search filter applied.
func (s *Selector) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Level:      s.level,
		LevelLabel: domain.LevelLabel(s.level),
		Breadcrumb: append(domain.RegionPath(nil), s.breadcrumb...),
		Options:    s.filteredOptions(),
		Query:      s.query,
		Loading:    s.loading,
	}
	if s.lastErr != nil {
		v.Error = s.lastErr.Error()
	}
	if s.committed != nil {
		v.Committed = append(domain.RegionPath(nil), s.committed...)
	}
	return v
}

// commit records the breadcrumb as the committed value and notifies the
// observer. Caller holds the lock.
func (s *Selector) commit() {
	s.committed = append(domain.RegionPath(nil), s.breadcrumb...)
	if s.onCommit != nil {
		s.onCommit(append(domain.RegionPath(nil), s.committed...))
	}
}

// uncommit clears the committed value, notifying the observer only on the
// non-nil → nil transition. Caller holds the lock.
func (s *Selector) uncommit() {
	if s.committed == nil {
		return
	}
	s.committed = nil
	if s.onCommit != nil {
		s.onCommit(nil)
	}
}

// reload fetches options for the current (level, parent). The lock is
// released during the fetch; a result arriving after another navigation
// has bumped the generation is discarded.
func (s *Selector) reload(ctx context.Context) error {
	s.generation++
	gen := s.generation
	level := s.level
	parent := ""
	if level > domain.LevelProvince {
		parent = s.breadcrumb[level-2].Code
	}
	s.loading = true
	s.lastErr = nil
	s.options = nil

	s.mu.Unlock()
	regions, err := s.fetch(ctx, level, parent)
	s.mu.Lock()

	if gen != s.generation {
		// A newer navigation superseded this fetch.
		return nil
	}
	s.loading = false
	if err != nil {
		s.lastErr = err
		return err
	}
	s.options = regions
	return nil
}

// filteredOptions applies the search filter. Caller holds the lock.
func (s *Selector) filteredOptions() []domain.Region {
	if s.query == "" {
		return append([]domain.Region(nil), s.options...)
	}
	out := make([]domain.Region, 0, len(s.options))
	for _, r := range s.options {
		if strings.Contains(strings.ToLower(r.Name), s.query) ||
			strings.Contains(strings.ToLower(r.Code), s.query) {
			out = append(out, r)
		}
	}
	return out
}
