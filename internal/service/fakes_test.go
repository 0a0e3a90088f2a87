package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"rich-text-bridge/internal/entity"
	"rich-text-bridge/internal/repository/contract"
	"rich-text-bridge/internal/repository/specification"
	"rich-text-bridge/internal/repository/unitofwork"
	"rich-text-bridge/pkg/events"

	"github.com/google/uuid"
)

type logLine struct {
	Level   string
	Module  string
	Message string
	Details map[string]interface{}
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []logLine
}

func (l *recordingLogger) add(level, module, message string, details map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, logLine{level, module, message, details})
}

func (l *recordingLogger) Debug(module, message string, details map[string]interface{}) {
	l.add("DEBUG", module, message, details)
}
func (l *recordingLogger) Info(module, message string, details map[string]interface{}) {
	l.add("INFO", module, message, details)
}
func (l *recordingLogger) Warn(module, message string, details map[string]interface{}) {
	l.add("WARN", module, message, details)
}
func (l *recordingLogger) Error(module, message string, details map[string]interface{}) {
	l.add("ERROR", module, message, details)
}
func (l *recordingLogger) Sync() error { return nil }

func (l *recordingLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, line := range l.lines {
		if line.Level == level {
			out = append(out, line.Message)
		}
	}
	return out
}

var errStorage = errors.New("storage unavailable")

type fakeDocumentRepository struct {
	mu        sync.Mutex
	documents map[uuid.UUID]entity.Document
	failWrite bool
	failRead  bool
	writes    int
	commits   int
}

func newFakeDocumentRepository() *fakeDocumentRepository {
	return &fakeDocumentRepository{documents: make(map[uuid.UUID]entity.Document)}
}

func (r *fakeDocumentRepository) Create(ctx context.Context, document *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite {
		return errStorage
	}
	r.writes++
	r.documents[document.Id] = *document
	return nil
}

func (r *fakeDocumentRepository) Update(ctx context.Context, document *entity.Document) error {
	return r.Create(ctx, document)
}

func (r *fakeDocumentRepository) SaveAnalysis(ctx context.Context, id uuid.UUID, plainText string, wordCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite {
		return errStorage
	}
	d, ok := r.documents[id]
	if !ok {
		return nil
	}
	r.writes++
	d.PlainText = plainText
	d.WordCount = wordCount
	r.documents[id] = d
	return nil
}

func (r *fakeDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite {
		return errStorage
	}
	delete(r.documents, id)
	return nil
}

func (r *fakeDocumentRepository) matches(d entity.Document, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if d.Id != s.ID {
				return false
			}
		case specification.DocumentOwnedByUser:
			if d.UserId != s.UserID {
				return false
			}
		case specification.ByTitle:
			if d.Title != s.Title {
				return false
			}
		case specification.ReferencingEntry:
			if !contains(d.EmbeddedEntries, s.EntryID) && !contains(d.InlineEntries, s.EntryID) {
				return false
			}
		case specification.ReferencingAsset:
			if !contains(d.EmbeddedAssets, s.AssetID) {
				return false
			}
		}
	}
	return true
}

func (r *fakeDocumentRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakeDocumentRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRead {
		return nil, errStorage
	}
	var out []*entity.Document
	for _, d := range r.documents {
		if r.matches(d, specs) {
			copied := d
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	for _, spec := range specs {
		if p, ok := spec.(specification.Pagination); ok {
			if p.Offset >= len(out) {
				return []*entity.Document{}, nil
			}
			out = out[p.Offset:]
			if p.Limit > 0 && p.Limit < len(out) {
				out = out[:p.Limit]
			}
		}
	}
	return out, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (r *fakeDocumentRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func (r *fakeDocumentRepository) get(id uuid.UUID) (entity.Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.documents[id]
	return d, ok
}

type fakeUnitOfWork struct {
	repo *fakeDocumentRepository
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }
func (u *fakeUnitOfWork) Commit() error {
	u.repo.mu.Lock()
	defer u.repo.mu.Unlock()
	u.repo.commits++
	return nil
}
func (u *fakeUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return u.repo
}

type fakeRepositoryFactory struct {
	repo *fakeDocumentRepository
}

func (f *fakeRepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{repo: f.repo}
}

type fakePublisherService struct {
	mu       sync.Mutex
	payloads []interface{}
	err      error
}

func (p *fakePublisherService) SendMessage(ctx context.Context, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return p.err
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *fakeEventPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *fakeEventPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}
