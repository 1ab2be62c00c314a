package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/adapter/http/dto"
	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = (livePongWait * 9) / 10
	liveReadLimit  = 64 << 10
	liveOutbox     = 16
)

var errMissingTransaction = errors.New("transaction is required")

// Live notification texts.
const (
	msgCreated     = "Transação adicionada!"
	msgUpdated     = "Transação atualizada!"
	msgDeleted     = "Transação removida!"
	msgSaveFailed  = "Erro ao salvar transação: "
	msgUnknownVerb = "ação desconhecida: "
)

// LiveDashboard is one viewer's live dashboard session.
type LiveDashboard interface {
	Open(ctx context.Context) error
	Close() error
	Updates() <-chan domain.Summary
	SetCriteria(c domain.Criteria) domain.Summary
	ClearFilters() domain.Summary
	Create(ctx context.Context, draft usecase.TransactionDraft) (*domain.Transaction, error)
	Update(ctx context.Context, id string, draft usecase.TransactionDraft) (*domain.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// LiveDashboardFactory opens a session for ownerID.
type LiveDashboardFactory func(ownerID string) LiveDashboard

// LiveHandler streams the dashboard over a WebSocket.
type LiveHandler struct {
	newDashboard LiveDashboardFactory
	loc          *time.Location
	upgrader     websocket.Upgrader
	logger       zerolog.Logger
}

// NewLiveHandler creates a new LiveHandler. Filter dates are read as
// calendar days in loc.
func NewLiveHandler(factory LiveDashboardFactory, loc *time.Location, logger zerolog.Logger) *LiveHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &LiveHandler{
		newDashboard: factory,
		loc:          loc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Serve handles GET /dashboard/live.
func (h *LiveHandler) Serve(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := h.logger.With().Str("user_id", user.ID).Logger()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	d := h.newDashboard(user.ID)
	defer d.Close()

	if err := d.Open(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to open live dashboard")
		conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		conn.WriteJSON(dto.NotificationEvent(dto.LevelError, err.Error()))
		return
	}
	logger.Debug().Msg("live dashboard opened")

	s := &liveSession{
		conn:   conn,
		d:      d,
		loc:    h.loc,
		out:    make(chan dto.LiveEvent, liveOutbox),
		cancel: cancel,
		logger: logger,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writeLoop(ctx)
	}()

	s.readLoop(ctx)
	cancel()
	<-done
	logger.Debug().Msg("live dashboard closed")
}

type liveSession struct {
	conn   *websocket.Conn
	d      LiveDashboard
	loc    *time.Location
	out    chan dto.LiveEvent
	cancel context.CancelFunc
	logger zerolog.Logger
}

// writeLoop is the only writer of conn.
func (s *liveSession) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			s.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case summary, ok := <-s.d.Updates():
			if !ok {
				return
			}
			err = s.write(dto.SummaryEvent(summary))
		case ev := <-s.out:
			err = s.write(ev)
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			err = s.conn.WriteMessage(websocket.PingMessage, nil)
		}
		if err != nil {
			s.logger.Debug().Err(err).Msg("live write failed")
			// Unblock the reader.
			s.cancel()
			s.conn.Close()
			return
		}
	}
}

func (s *liveSession) write(ev dto.LiveEvent) error {
	s.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	return s.conn.WriteJSON(ev)
}

func (s *liveSession) readLoop(ctx context.Context) {
	s.conn.SetReadLimit(liveReadLimit)
	s.conn.SetReadDeadline(time.Now().Add(livePongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		var cmd dto.LiveCommand
		if err := s.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug().Err(err).Msg("live read failed")
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(livePongWait))

		if ev, ok := s.handle(ctx, cmd); ok {
			s.notify(ctx, ev)
		}
	}
}

// handle applies cmd. It returns the notification to send, if any; filter
// changes answer through the next summary frame.
func (s *liveSession) handle(ctx context.Context, cmd dto.LiveCommand) (dto.LiveEvent, bool) {
	switch cmd.Action {
	case dto.ActionFilter:
		c, err := cmd.Filter.ToCriteria(s.loc)
		if err != nil {
			return dto.NotificationEvent(dto.LevelError, err.Error()), true
		}
		s.d.SetCriteria(c)
		return dto.LiveEvent{}, false

	case dto.ActionClear:
		s.d.ClearFilters()
		return dto.LiveEvent{}, false

	case dto.ActionCreate, dto.ActionUpdate:
		if cmd.Transaction == nil {
			return saveFailed(errMissingTransaction), true
		}
		draft, err := cmd.Transaction.ToDraft()
		if err != nil {
			return saveFailed(err), true
		}
		if cmd.Action == dto.ActionCreate {
			if _, err := s.d.Create(ctx, draft); err != nil {
				return saveFailed(err), true
			}
			return dto.NotificationEvent(dto.LevelSuccess, msgCreated), true
		}
		if _, err := s.d.Update(ctx, cmd.ID, draft); err != nil {
			return saveFailed(err), true
		}
		return dto.NotificationEvent(dto.LevelSuccess, msgUpdated), true

	case dto.ActionDelete:
		if err := s.d.Delete(ctx, cmd.ID); err != nil {
			return saveFailed(err), true
		}
		return dto.NotificationEvent(dto.LevelSuccess, msgDeleted), true

	default:
		return dto.NotificationEvent(dto.LevelError, msgUnknownVerb+cmd.Action), true
	}
}

func (s *liveSession) notify(ctx context.Context, ev dto.LiveEvent) {
	select {
	case s.out <- ev:
	case <-ctx.Done():
	}
}

func saveFailed(err error) dto.LiveEvent {
	if errors.Is(err, usecase.ErrDashboardClosed) {
		return dto.NotificationEvent(dto.LevelError, err.Error())
	}
	return dto.NotificationEvent(dto.LevelError, msgSaveFailed+err.Error())
}
