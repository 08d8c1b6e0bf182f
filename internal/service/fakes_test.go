package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/buildsafe/safety-backend/internal/domain"
	"github.com/buildsafe/safety-backend/internal/repository"
)

var errStoreDown = errors.New("connection refused")

// store is an in-memory stand-in for the Postgres repositories.
type store struct {
	mu          sync.Mutex
	templates   map[uuid.UUID]domain.ChecklistTemplate
	completions map[uuid.UUID]domain.ChecklistCompletion
	users       map[uuid.UUID]domain.User
	projects    map[uuid.UUID]domain.Project

	writes      int
	failItemID  uuid.UUID
	failLookups bool
	failCreate  bool
}

func newStore() *store {
	return &store{
		templates:   map[uuid.UUID]domain.ChecklistTemplate{},
		completions: map[uuid.UUID]domain.ChecklistCompletion{},
		users:       map[uuid.UUID]domain.User{},
		projects:    map[uuid.UUID]domain.Project{},
	}
}

func (s *store) repos() (repository.TemplateRepository, repository.CompletionRepository, repository.ProjectRepository, repository.UserRepository) {
	return fakeTemplates{s}, fakeCompletions{s}, fakeProjects{s}, fakeUsers{s}
}

func (s *store) addUser(email string, admin bool) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := strings.Split(email, "@")[0]
	u := domain.User{ID: uuid.New(), Email: email, Name: &name, IsAdmin: admin, CreatedAt: time.Now()}
	s.users[u.ID] = u
	return &u
}

func (s *store) addProject(name string) *domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := domain.Project{ID: uuid.New(), Name: name, Status: domain.ProjectStatusActive}
	s.projects[p.ID] = p
	return &p
}

func (s *store) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

type fakeTemplates struct{ s *store }

func (f fakeTemplates) Create(_ context.Context, t *domain.ChecklistTemplate) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.writes++
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	for i := range t.Items {
		t.Items[i].ID = uuid.New()
		t.Items[i].ChecklistID = t.ID
	}
	cp := *t
	cp.Items = append([]domain.ChecklistItem{}, t.Items...)
	f.s.templates[t.ID] = cp
	return nil
}

func (f fakeTemplates) FindByID(_ context.Context, id uuid.UUID) (*domain.ChecklistTemplate, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.templates[id]
	if !ok {
		return nil, domain.NotFound("checklist", id)
	}
	t.Items = append([]domain.ChecklistItem{}, t.Items...)
	return &t, nil
}

func (f fakeTemplates) ListSummaries(_ context.Context) ([]domain.TemplateSummary, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.TemplateSummary
	for _, t := range f.s.templates {
		sum := domain.TemplateSummary{ChecklistTemplate: t, ItemCount: len(t.Items)}
		for _, c := range f.s.completions {
			if c.ChecklistID == t.ID {
				sum.CompletionCount++
			}
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeTemplates) Replace(_ context.Context, t *domain.ChecklistTemplate) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	old, ok := f.s.templates[t.ID]
	if !ok {
		return domain.NotFound("checklist", t.ID)
	}
	f.s.writes++
	t.CreatedBy = old.CreatedBy
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = time.Now()
	for i := range t.Items {
		t.Items[i].ID = uuid.New()
		t.Items[i].ChecklistID = t.ID
	}
	cp := *t
	cp.Items = append([]domain.ChecklistItem{}, t.Items...)
	f.s.templates[t.ID] = cp
	return nil
}

func (f fakeTemplates) Delete(_ context.Context, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.templates[id]; !ok {
		return domain.NotFound("checklist", id)
	}
	f.s.writes++
	delete(f.s.templates, id)
	return nil
}

func (f fakeTemplates) Categories(_ context.Context) ([]string, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, t := range f.s.templates {
		if t.Category != nil && !seen[*t.Category] {
			seen[*t.Category] = true
			out = append(out, *t.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f fakeTemplates) NamesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failLookups {
		return nil, errStoreDown
	}
	out := map[uuid.UUID]string{}
	for _, id := range ids {
		if t, ok := f.s.templates[id]; ok {
			out[id] = t.Name
		}
	}
	return out, nil
}

type fakeCompletions struct{ s *store }

func (f fakeCompletions) Create(_ context.Context, c *domain.ChecklistCompletion) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failCreate {
		return errStoreDown
	}
	f.s.writes++
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	for i := range c.Items {
		c.Items[i].ID = uuid.New()
		c.Items[i].CompletionID = c.ID
	}
	cp := *c
	cp.Items = append([]domain.CompletionItem{}, c.Items...)
	f.s.completions[c.ID] = cp
	return nil
}

func (f fakeCompletions) FindByID(_ context.Context, id uuid.UUID) (*domain.ChecklistCompletion, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.completions[id]
	if !ok {
		return nil, domain.NotFound("completion", id)
	}
	c.Items = append([]domain.CompletionItem{}, c.Items...)
	return &c, nil
}

func (f fakeCompletions) List(_ context.Context, checklistID *uuid.UUID) ([]domain.ChecklistCompletion, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.ChecklistCompletion
	for _, c := range f.s.completions {
		if checklistID != nil && c.ChecklistID != *checklistID {
			continue
		}
		c.Items = append([]domain.CompletionItem{}, c.Items...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletionDatetime.After(out[j].CompletionDatetime) })
	return out, nil
}

func (f fakeCompletions) UpdateFields(_ context.Context, id uuid.UUID, patch domain.CompletionPatch) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.completions[id]
	if !ok {
		return domain.NotFound("completion", id)
	}
	f.s.writes++
	c.ProjectID = patch.ProjectID
	c.CompletionDatetime = patch.CompletionDatetime
	c.Notes = patch.Notes
	f.s.completions[id] = c
	return nil
}

func (f fakeCompletions) UpdateItem(_ context.Context, completionID uuid.UUID, upd domain.CompletionItemUpdate) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if upd.ID == f.s.failItemID {
		return errStoreDown
	}
	c, ok := f.s.completions[completionID]
	if !ok {
		return domain.NotFound("completion", completionID)
	}
	for i := range c.Items {
		if c.Items[i].ID == upd.ID {
			f.s.writes++
			c.Items[i].IsChecked = upd.IsChecked
			c.Items[i].Notes = upd.Notes
			return nil
		}
	}
	return domain.NotFound("completion item", upd.ID)
}

func (f fakeCompletions) Delete(_ context.Context, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.completions[id]; !ok {
		return domain.NotFound("completion", id)
	}
	f.s.writes++
	delete(f.s.completions, id)
	return nil
}

type fakeProjects struct{ s *store }

func (f fakeProjects) Create(_ context.Context, p *domain.Project) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.writes++
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	f.s.projects[p.ID] = *p
	return nil
}

func (f fakeProjects) FindByID(_ context.Context, id uuid.UUID) (*domain.Project, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.projects[id]
	if !ok {
		return nil, domain.NotFound("project", id)
	}
	return &p, nil
}

func (f fakeProjects) List(_ context.Context, status string) ([]domain.Project, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.Project
	for _, p := range f.s.projects {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeProjects) NamesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := map[uuid.UUID]string{}
	for _, id := range ids {
		if p, ok := f.s.projects[id]; ok {
			out[id] = p.Name
		}
	}
	return out, nil
}

type fakeUsers struct{ s *store }

func (f fakeUsers) Create(_ context.Context, u *domain.User) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	f.s.writes++
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	f.s.users[u.ID] = *u
	return nil
}

func (f fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return nil, domain.NotFound("user", id)
	}
	return &u, nil
}

func (f fakeUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f fakeUsers) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := map[uuid.UUID]domain.User{}
	for _, id := range ids {
		if u, ok := f.s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (f fakeUsers) List(_ context.Context) ([]domain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.User
	for _, u := range f.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f fakeUsers) UpdateProfile(_ context.Context, id uuid.UUID, name *string, isAdmin bool) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return domain.NotFound("user", id)
	}
	f.s.writes++
	u.Name = name
	u.IsAdmin = isAdmin
	f.s.users[id] = u
	return nil
}

func (f fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return domain.NotFound("user", id)
	}
	f.s.writes++
	u.PasswordHash = hash
	f.s.users[id] = u
	return nil
}

func (f fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.users[id]; !ok {
		return domain.NotFound("user", id)
	}
	f.s.writes++
	delete(f.s.users, id)
	return nil
}
