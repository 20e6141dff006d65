package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwsadler/notifykit/pkg/logger"
)

// DefaultPageSize is the page size used when a request passes zero or a
// negative value.
const DefaultPageSize = 20

// Action names a mutation the service can apply to a notification.
type Action string

const (
	ActionMarkRead   Action = "mark_read"
	ActionMarkUnread Action = "mark_unread"
	ActionDelete     Action = "delete"
)

// Page is one page of the filtered notification list together with the
// pagination envelope the UI renders.
type Page struct {
	Items       []Notification `json:"items"`
	TotalCount  int            `json:"total_count"`
	CurrentPage int            `json:"current_page"`
	TotalPages  int            `json:"total_pages"`
	HasMore     bool           `json:"has_more"`
	UnreadCount int            `json:"unread_count"`
}

// UpdateResult is the outcome of an update request. Failures are carried in
// the value rather than returned, so a UI can render them uniformly.
type UpdateResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	UnreadCount int    `json:"unread_count"`
	Err         error  `json:"-"`
}

// Service is the request-shaped surface over a Manager: paged list reads,
// action-dispatch updates, and per-user preferences. It adds no state of its
// own; everything it returns reflects the manager's current snapshot.
type Service struct {
	manager  *Manager
	settings SettingsStorage
	log      *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger for the Service.
func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithSettingsStorage attaches a preference store. Without one, settings
// calls return defaults and updates fail.
func WithSettingsStorage(storage SettingsStorage) ServiceOption {
	return func(s *Service) { s.settings = storage }
}

// NewService creates a service over the given manager.
func NewService(manager *Manager, opts ...ServiceOption) *Service {
	s := &Service{
		manager: manager,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetNotifications returns one page of the current snapshot after applying
// the filter. Pagination is computed client-side over the filtered set; page
// numbers start at 1 and out-of-range pages return empty items with a valid
// envelope.
func (s *Service) GetNotifications(ctx context.Context, f Filter, page, pageSize int) (Page, error) {
	if !s.manager.Ready() {
		return Page{}, ErrNotInitialized
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	filtered := f.Apply(s.manager.Current())
	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	items := []Notification{}
	if start < total {
		items = filtered[start:end]
	}

	return Page{
		Items:       items,
		TotalCount:  total,
		CurrentPage: page,
		TotalPages:  totalPages,
		HasMore:     page < totalPages,
		UnreadCount: s.manager.UnreadCount(),
	}, nil
}

// UpdateNotification applies an action to one notification and reports the
// outcome as a value. It never returns a Go error; inspect the result's Err
// for the cause of a failure.
func (s *Service) UpdateNotification(ctx context.Context, id string, action Action) UpdateResult {
	var err error
	switch action {
	case ActionMarkRead:
		err = s.manager.MarkAsRead(ctx, id)
	case ActionMarkUnread:
		err = s.manager.MarkAsUnread(ctx, id)
	case ActionDelete:
		err = s.manager.Delete(ctx, id)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	if err != nil {
		s.log.WarnContext(ctx, "notification update failed",
			logger.NotificationID(id), logger.Event(string(action)), logger.Error(err))
		return UpdateResult{
			Success:     false,
			Message:     updateFailureMessage(err),
			UnreadCount: s.manager.UnreadCount(),
			Err:         err,
		}
	}

	return UpdateResult{
		Success:     true,
		Message:     "notification updated",
		UnreadCount: s.manager.UnreadCount(),
	}
}

// MarkAllAsRead marks every unread notification in the current snapshot
// read. Returns an empty-batch result when nothing is unread.
func (s *Service) MarkAllAsRead(ctx context.Context) UpdateResult {
	var ids []string
	for _, n := range s.manager.Current() {
		if !n.IsRead {
			ids = append(ids, n.ID)
		}
	}
	if len(ids) == 0 {
		return UpdateResult{
			Success:     true,
			Message:     "nothing to mark",
			UnreadCount: s.manager.UnreadCount(),
		}
	}

	if err := s.manager.MarkManyAsRead(ctx, ids); err != nil {
		s.log.WarnContext(ctx, "batch mark-read failed",
			logger.Count(len(ids)), logger.Error(err))
		return UpdateResult{
			Success:     false,
			Message:     updateFailureMessage(err),
			UnreadCount: s.manager.UnreadCount(),
			Err:         err,
		}
	}
	return UpdateResult{
		Success:     true,
		Message:     "notifications updated",
		UnreadCount: s.manager.UnreadCount(),
	}
}

// GetSettings returns the user's preferences, one entry per notification
// type. Types without a stored record fall back to the enabled-by-default
// setting.
func (s *Service) GetSettings(ctx context.Context, userID string) ([]Setting, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	defaults := DefaultSettings(userID)
	if s.settings == nil {
		return defaults, nil
	}

	stored, err := s.settings.GetAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	byType := make(map[Type]Setting, len(stored))
	for _, st := range stored {
		byType[st.Type] = st
	}

	out := make([]Setting, 0, len(defaults))
	for _, def := range defaults {
		if st, ok := byType[def.Type]; ok {
			out = append(out, st)
		} else {
			out = append(out, def)
		}
	}
	return out, nil
}

// UpdateSetting applies a partial preference change for one notification
// type.
func (s *Service) UpdateSetting(ctx context.Context, userID string, t Type, update SettingUpdate) (Setting, error) {
	if userID == "" {
		return Setting{}, ErrEmptyUserID
	}
	if s.settings == nil {
		return Setting{}, fmt.Errorf("%w: no settings storage configured", ErrSettingNotFound)
	}
	return s.settings.Update(ctx, userID, t, update)
}

func updateFailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotInitialized):
		return "notifications are not available yet"
	case errors.Is(err, ErrNotificationNotFound):
		return "notification no longer exists"
	case errors.Is(err, ErrUnknownAction):
		return "unsupported action"
	default:
		return "notification update failed"
	}
}
