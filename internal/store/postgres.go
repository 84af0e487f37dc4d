package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/pkg/jobs"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

const docChannelPrefix = "classdesk:doc:"

// fieldWrite is the payload of one durable upsert job and of the pub/sub
// fanout between sessions.
type fieldWrite struct {
	UserID string          `json:"user_id"`
	Field  string          `json:"field"`
	Value  json.RawMessage `json:"value"`
}

// PostgresStore persists one JSONB row per (user, field). The in-process
// snapshot is the source of truth for reads; durable upserts ride the jobs
// queue and their failure never rolls local state back.
type PostgresStore struct {
	db     *sqlx.DB
	rdb    *redis.Client
	queue  *jobs.Queue
	logger *zap.Logger

	mu        sync.RWMutex
	snapshots map[string]*models.UserDocument
	subs      map[string]map[int]chan *models.UserDocument
	nextSubID int

	onWriteFailure func()
}

// PostgresStoreParams groups constructor dependencies.
type PostgresStoreParams struct {
	DB             *sqlx.DB
	Redis          *redis.Client
	Logger         *zap.Logger
	QueueConfig    jobs.QueueConfig
	OnWriteFailure func()
}

// NewPostgresStore constructs the store and starts its writer queue. The
// caller owns ctx; cancelling it stops background work.
func NewPostgresStore(ctx context.Context, params PostgresStoreParams) *PostgresStore {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PostgresStore{
		db:             params.DB,
		rdb:            params.Redis,
		logger:         logger,
		snapshots:      make(map[string]*models.UserDocument),
		subs:           make(map[string]map[int]chan *models.UserDocument),
		onWriteFailure: params.OnWriteFailure,
	}
	cfg := params.QueueConfig
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	s.queue = jobs.NewQueue("doc-writer", s.handleWriteJob, cfg)
	s.queue.Start(ctx)
	if s.rdb != nil {
		go s.listenRemote(ctx)
	}
	return s
}

// Stop drains the writer queue.
func (s *PostgresStore) Stop() {
	s.queue.Stop()
}

// Load returns a snapshot for the user, reading from the database and
// seeding demo defaults on first-ever access.
func (s *PostgresStore) Load(ctx context.Context, userID string) (*models.UserDocument, error) {
	s.mu.RLock()
	if doc, ok := s.snapshots[userID]; ok {
		snapshot := doc.Clone()
		s.mu.RUnlock()
		return snapshot, nil
	}
	s.mu.RUnlock()

	type row struct {
		Field string          `db:"field"`
		Value json.RawMessage `db:"value"`
	}
	var rows []row
	err := s.db.SelectContext(ctx, &rows,
		`SELECT field, value FROM user_documents WHERE user_id = $1`, userID)
	if err != nil {
		return nil, translateStoreError(err, "load user document")
	}

	doc := models.NewUserDocument()
	for _, r := range rows {
		if err := doc.ApplyField(r.Field, r.Value); err != nil {
			s.logger.Warn("skipping corrupt document field",
				zap.String("user_id", userID), zap.String("field", r.Field), zap.Error(err))
		}
	}
	if len(rows) == 0 {
		doc = SeedDocument()
		seed := map[string]interface{}{}
		for _, name := range []string{models.FieldClasses, models.FieldSchedule, models.FieldJournalEntries} {
			if value, ok := doc.FieldValue(name); ok {
				seed[name] = value
			}
		}
		s.enqueueWrites(userID, seed)
		s.logger.Info("seeded new user document", zap.String("user_id", userID))
	}

	s.mu.Lock()
	if cached, ok := s.snapshots[userID]; ok {
		doc = cached
	} else {
		s.snapshots[userID] = doc
	}
	snapshot := doc.Clone()
	s.mu.Unlock()
	return snapshot, nil
}

// MergeWrite applies fields to the local snapshot, fans out, publishes to
// peer sessions, and enqueues the durable upserts.
func (s *PostgresStore) MergeWrite(ctx context.Context, userID string, fields map[string]interface{}) error {
	if _, err := s.Load(ctx, userID); err != nil {
		return err
	}

	s.mu.Lock()
	doc := s.snapshots[userID]
	for name, value := range fields {
		raw, err := json.Marshal(value)
		if err != nil {
			s.mu.Unlock()
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unencodable field value")
		}
		if err := doc.ApplyField(name, raw); err != nil {
			s.mu.Unlock()
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed field value")
		}
	}
	snapshot := doc.Clone()
	s.fanoutLocked(userID, snapshot)
	s.mu.Unlock()

	s.publishRemote(ctx, userID, fields)
	s.enqueueWrites(userID, fields)
	return nil
}

// Subscribe registers a snapshot channel for the user.
func (s *PostgresStore) Subscribe(_ context.Context, userID string) (<-chan *models.UserDocument, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	ch := make(chan *models.UserDocument, 8)
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[int]chan *models.UserDocument)
	}
	s.subs[userID][id] = ch
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[userID][id]; ok {
			delete(s.subs[userID], id)
			close(sub)
		}
	}
	return ch, cancel
}

// LoadImages reads the secondary image record.
func (s *PostgresStore) LoadImages(ctx context.Context, userID string) (*models.ScheduleImages, error) {
	var images models.ScheduleImages
	err := s.db.GetContext(ctx, &images,
		`SELECT COALESCE(weekly, '') AS weekly, COALESCE(yearly, '') AS yearly
		 FROM user_images WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.ScheduleImages{}, nil
		}
		return nil, translateStoreError(err, "load schedule images")
	}
	return &images, nil
}

// MergeImages upserts the image record. Images bypass the writer queue:
// they are rare, large, and the caller wants the size-cap error inline.
func (s *PostgresStore) MergeImages(ctx context.Context, userID string, images models.ScheduleImages) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_images (user_id, weekly, yearly, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id)
		 DO UPDATE SET weekly = EXCLUDED.weekly, yearly = EXCLUDED.yearly, updated_at = EXCLUDED.updated_at`,
		userID, images.Weekly, images.Yearly, time.Now().UTC())
	if err != nil {
		return translateStoreError(err, "merge schedule images")
	}
	return nil
}

// ListTodos returns the shared list newest first.
func (s *PostgresStore) ListTodos(ctx context.Context) ([]models.Todo, error) {
	var todos []models.Todo
	err := s.db.SelectContext(ctx, &todos,
		`SELECT id, text, completed, assignee, created_at FROM shared_todos ORDER BY created_at DESC`)
	if err != nil {
		return nil, translateStoreError(err, "list shared todos")
	}
	return todos, nil
}

// AddTodo appends a shared todo.
func (s *PostgresStore) AddTodo(ctx context.Context, text, assignee string) (*models.Todo, error) {
	todo := models.Todo{
		ID:        uuid.NewString(),
		Text:      text,
		Assignee:  assignee,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shared_todos (id, text, completed, assignee, created_at) VALUES ($1, $2, $3, $4, $5)`,
		todo.ID, todo.Text, todo.Completed, todo.Assignee, todo.CreatedAt)
	if err != nil {
		return nil, translateStoreError(err, "insert shared todo")
	}
	return &todo, nil
}

// ToggleTodo flips completion and returns the updated row.
func (s *PostgresStore) ToggleTodo(ctx context.Context, id string) (*models.Todo, error) {
	var todo models.Todo
	err := s.db.GetContext(ctx, &todo,
		`UPDATE shared_todos SET completed = NOT completed WHERE id = $1
		 RETURNING id, text, completed, assignee, created_at`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "todo not found")
		}
		return nil, translateStoreError(err, "toggle shared todo")
	}
	return &todo, nil
}

// DeleteTodo removes the todo with the given id.
func (s *PostgresStore) DeleteTodo(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shared_todos WHERE id = $1`, id)
	if err != nil {
		return translateStoreError(err, "delete shared todo")
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "todo not found")
	}
	return nil
}

// postRow maps a shared_posts row; likes is a text[] column.
type postRow struct {
	ID        string         `db:"id"`
	Text      string         `db:"text"`
	Author    string         `db:"author"`
	Likes     pq.StringArray `db:"likes"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r postRow) toPost() models.Post {
	return models.Post{
		ID:        r.ID,
		Text:      r.Text,
		Author:    r.Author,
		Likes:     append([]string{}, r.Likes...),
		CreatedAt: r.CreatedAt,
	}
}

// ListPosts returns the shared feed newest first.
func (s *PostgresStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	var rows []postRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, text, author, likes, created_at FROM shared_posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, translateStoreError(err, "list shared posts")
	}
	posts := make([]models.Post, len(rows))
	for i, r := range rows {
		posts[i] = r.toPost()
	}
	return posts, nil
}

// AddPost appends a post to the shared feed.
func (s *PostgresStore) AddPost(ctx context.Context, text, author string) (*models.Post, error) {
	post := models.Post{
		ID:        uuid.NewString(),
		Text:      text,
		Author:    author,
		Likes:     []string{},
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shared_posts (id, text, author, likes, created_at) VALUES ($1, $2, $3, $4, $5)`,
		post.ID, post.Text, post.Author, pq.StringArray{}, post.CreatedAt)
	if err != nil {
		return nil, translateStoreError(err, "insert shared post")
	}
	return &post, nil
}

// ToggleLike flips the user's membership in the post's like list and
// returns the updated row.
func (s *PostgresStore) ToggleLike(ctx context.Context, id, userID string) (*models.Post, error) {
	var row postRow
	err := s.db.GetContext(ctx, &row,
		`UPDATE shared_posts
		 SET likes = CASE WHEN $2 = ANY(likes) THEN array_remove(likes, $2) ELSE array_append(likes, $2) END
		 WHERE id = $1
		 RETURNING id, text, author, likes, created_at`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, translateStoreError(err, "toggle post like")
	}
	post := row.toPost()
	return &post, nil
}

// DeletePost removes the post with the given id.
func (s *PostgresStore) DeletePost(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shared_posts WHERE id = $1`, id)
	if err != nil {
		return translateStoreError(err, "delete shared post")
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "post not found")
	}
	return nil
}

func (s *PostgresStore) enqueueWrites(userID string, fields map[string]interface{}) {
	for name, value := range fields {
		raw, err := json.Marshal(value)
		if err != nil {
			s.logger.Error("dropping unencodable field write",
				zap.String("user_id", userID), zap.String("field", name), zap.Error(err))
			continue
		}
		job := jobs.Job{
			ID:      uuid.NewString(),
			Kind:    "merge-field",
			Payload: fieldWrite{UserID: userID, Field: name, Value: raw},
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Error("failed to enqueue field write",
				zap.String("user_id", userID), zap.String("field", name), zap.Error(err))
			s.noteWriteFailure()
		}
	}
}

func (s *PostgresStore) handleWriteJob(ctx context.Context, job jobs.Job) error {
	write, ok := job.Payload.(fieldWrite)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_documents (user_id, field, value, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, field)
		 DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		write.UserID, write.Field, []byte(write.Value), time.Now().UTC())
	if err != nil {
		s.noteWriteFailure()
		translated := translateStoreError(err, "durable field write")
		if appErrors.FromError(translated).Code == appErrors.ErrStorePermission.Code {
			// Permission denial is a deployment misconfiguration; retrying
			// will not help, so log the remediation and drop the job.
			s.logger.Error("durable write rejected", zap.String("user_id", write.UserID),
				zap.String("field", write.Field), zap.String("remediation", appErrors.ErrStorePermission.Message))
			return nil
		}
		return translated
	}
	return nil
}

// publishRemote notifies other server instances / sessions through redis.
func (s *PostgresStore) publishRemote(ctx context.Context, userID string, fields map[string]interface{}) {
	if s.rdb == nil {
		return
	}
	for name, value := range fields {
		raw, err := json.Marshal(value)
		if err != nil {
			continue
		}
		payload, err := json.Marshal(fieldWrite{UserID: userID, Field: name, Value: raw})
		if err != nil {
			continue
		}
		if err := s.rdb.Publish(ctx, docChannelPrefix+userID, payload).Err(); err != nil {
			s.logger.Warn("failed to publish document change", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

// listenRemote applies changes published by peer instances to the local
// snapshot and fans them out to subscribers.
func (s *PostgresStore) listenRemote(ctx context.Context) {
	sub := s.rdb.PSubscribe(ctx, docChannelPrefix+"*")
	defer sub.Close() //nolint:errcheck
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var write fieldWrite
			if err := json.Unmarshal([]byte(msg.Payload), &write); err != nil {
				s.logger.Warn("malformed document change message", zap.Error(err))
				continue
			}
			s.applyRemote(write)
		}
	}
}

func (s *PostgresStore) applyRemote(write fieldWrite) {
	s.mu.Lock()
	doc, ok := s.snapshots[write.UserID]
	if !ok {
		// Nothing cached locally; the next Load reads the durable rows.
		s.mu.Unlock()
		return
	}
	if err := doc.ApplyField(write.Field, write.Value); err != nil {
		s.mu.Unlock()
		s.logger.Warn("failed to apply remote change", zap.String("field", write.Field), zap.Error(err))
		return
	}
	snapshot := doc.Clone()
	s.fanoutLocked(write.UserID, snapshot)
	s.mu.Unlock()
}

// fanoutLocked delivers a snapshot to every subscriber of the user. It
// must run with s.mu held so a concurrent cancel cannot close a channel
// mid-delivery; sends never block, full buffers drop the snapshot.
func (s *PostgresStore) fanoutLocked(userID string, snapshot *models.UserDocument) {
	for _, ch := range s.subs[userID] {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func (s *PostgresStore) noteWriteFailure() {
	if s.onWriteFailure != nil {
		s.onWriteFailure()
	}
}

// translateStoreError maps driver failures onto the domain error taxonomy.
// Permission denials are called out separately because they indicate a
// deployment misconfiguration rather than a transient fault.
func translateStoreError(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "42501" {
		return appErrors.Wrap(err, appErrors.ErrStorePermission.Code, appErrors.ErrStorePermission.Status, appErrors.ErrStorePermission.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrBackendUnreachable.Code, appErrors.ErrBackendUnreachable.Status, fmt.Sprintf("%s failed", op))
}
