package call

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/apptline/internal/appointments"
	"github.com/wolfman30/apptline/internal/observability/metrics"
	"github.com/wolfman30/apptline/pkg/logging"
)

var dialogueTracer = otel.Tracer("apptline.internal.call")

// State identifies where a dialogue session is in its turn loop.
type State string

const (
	StateAwaitingInput             State = "awaiting_input"
	StateAwaitingRescheduleDetails State = "awaiting_reschedule_details"
)

// Store is the slice of the appointment repository the dialogue needs.
type Store interface {
	GetByID(ctx context.Context, id string) (*appointments.Appointment, error)
	UpdateByID(ctx context.Context, id string, update appointments.PartialUpdate) error
}

// UpdateFunc receives the merged record after every successful store update,
// so the owning session list can reconcile. The action is one of "confirm",
// "cancel", "reschedule".
type UpdateFunc func(appt appointments.Appointment, action string)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("call session not found")

const (
	replyConfirmed    = "Appointment confirmed. Thank you!"
	replyCancelled    = "Appointment cancelled. Thank you!"
	replyNeedDetails  = "Please provide a new date and time."
	replyUnrecognized = "Sorry, I didn't understand. Please reply 'confirm', 'cancel', or 'reschedule to [date] at [time]'."
)

type session struct {
	id    string
	appt  appointments.Appointment
	state State
}

// Service drives mock call dialogues. Each session walks one appointment
// through the scripted confirm/cancel/reschedule exchange; recognized
// intents issue exactly one store update and the result is reported through
// the update callback. Store failures become assistant turns in the
// transcript and are never retried.
type Service struct {
	store       Store
	transcripts TranscriptStore
	onUpdate    UpdateFunc
	resolver    *AIIntentResolver
	metrics     *metrics.CallMetrics
	logger      *logging.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService constructs a dialogue service.
func NewService(store Store, transcripts TranscriptStore, onUpdate UpdateFunc, m *metrics.CallMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("call: store required")
	}
	if transcripts == nil {
		transcripts = NewMemoryTranscriptStore()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:       store,
		transcripts: transcripts,
		onUpdate:    onUpdate,
		metrics:     m,
		logger:      logger,
		sessions:    make(map[string]*session),
	}
}

// Open starts a dialogue for the given appointment and seeds the transcript
// with the assistant greeting.
func (s *Service) Open(ctx context.Context, appointmentID string) (string, Turn, error) {
	ctx, span := dialogueTracer.Start(ctx, "call.open")
	defer span.End()
	span.SetAttributes(attribute.String("apptline.appointment_id", appointmentID))

	appt, err := s.store.GetByID(ctx, appointmentID)
	if err != nil {
		span.RecordError(err)
		return "", Turn{}, err
	}

	sess := &session{
		id:    uuid.NewString(),
		appt:  *appt,
		state: StateAwaitingInput,
	}

	startDisplay := appt.StartTime
	if formatted, err := appointments.FormatTime12Hour(appt.StartTime); err == nil {
		startDisplay = formatted
	}
	greeting := s.appendAssistant(ctx, sess.id, fmt.Sprintf(
		"Hi, confirming your appointment: %s on %s at %s. Reply 'confirm', 'cancel', or 'reschedule'.",
		appt.Title, appt.Date, startDisplay,
	))

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.metrics.ObserveSession()
	s.logger.Info("call session opened", "session_id", sess.id, "appointment_id", appointmentID)
	return sess.id, greeting, nil
}

// HandleInput processes one user turn: the text is appended to the
// transcript, classified, and acted on. The returned turn is the assistant
// reply; the returned state is where the dialogue stands afterwards.
func (s *Service) HandleInput(ctx context.Context, sessionID, text string) (Turn, State, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return Turn{}, "", err
	}

	ctx, span := dialogueTracer.Start(ctx, "call.handle_input")
	defer span.End()

	s.appendTurn(ctx, sessionID, Turn{Role: RoleUser, Content: text})

	intent := s.resolveIntent(ctx, sess, text)
	s.metrics.ObserveTurn(string(intent.Kind))
	span.SetAttributes(
		attribute.String("apptline.session_id", sessionID),
		attribute.String("apptline.intent", string(intent.Kind)),
	)

	switch intent.Kind {
	case IntentConfirm:
		status := appointments.StatusConfirmed
		return s.applyUpdate(ctx, sess, "confirm", appointments.PartialUpdate{Status: &status}, replyConfirmed)

	case IntentCancel:
		status := appointments.StatusCancelled
		return s.applyUpdate(ctx, sess, "cancel", appointments.PartialUpdate{Status: &status}, replyCancelled)

	case IntentReschedule:
		reply := fmt.Sprintf("Appointment rescheduled to %s at %s. Thank you!", intent.Date, intent.Time)
		return s.applyUpdate(ctx, sess, "reschedule", appointments.PartialUpdate{Date: &intent.Date, StartTime: &intent.Time}, reply)

	case IntentRescheduleNeedsDetails:
		s.setState(sess, StateAwaitingRescheduleDetails)
		return s.appendAssistant(ctx, sessionID, replyNeedDetails), StateAwaitingRescheduleDetails, nil

	default:
		return s.appendAssistant(ctx, sessionID, replyUnrecognized), s.stateOf(sess), nil
	}
}

// SetResolver installs the remote completion backend as an alternate intent
// source. When unset (the default), classification is purely local.
func (s *Service) SetResolver(resolver *AIIntentResolver) {
	s.resolver = resolver
}

// resolveIntent prefers the remote backend when one is installed, falling
// back to the local parser on any transport failure.
func (s *Service) resolveIntent(ctx context.Context, sess *session, text string) Intent {
	if s.resolver == nil {
		return ParseIntent(text)
	}
	appt := func() appointments.Appointment {
		s.mu.Lock()
		defer s.mu.Unlock()
		return sess.appt
	}()
	intent, err := s.resolver.Resolve(ctx, appt, text)
	if err != nil {
		s.logger.Warn("remote intent resolution failed, using local parser", "error", err)
		return ParseIntent(text)
	}
	return intent
}

// SubmitReschedule completes the follow-up step entered when a reschedule
// request arrived without an explicit date and time.
func (s *Service) SubmitReschedule(ctx context.Context, sessionID, date, timeValue string) (Turn, State, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return Turn{}, "", err
	}
	if date == "" || timeValue == "" {
		return Turn{}, s.stateOf(sess), errors.New("call: reschedule requires date and time")
	}

	ctx, span := dialogueTracer.Start(ctx, "call.submit_reschedule")
	defer span.End()
	span.SetAttributes(attribute.String("apptline.session_id", sessionID))

	timeDisplay := timeValue
	if formatted, err := appointments.FormatTime12Hour(timeValue); err == nil {
		timeDisplay = formatted
	}
	reply := fmt.Sprintf("Appointment rescheduled to %s at %s. Thank you!", date, timeDisplay)

	s.metrics.ObserveTurn(string(IntentReschedule))
	return s.applyUpdate(ctx, sess, "reschedule", appointments.PartialUpdate{Date: &date, StartTime: &timeValue}, reply)
}

// Transcript returns the full append-only transcript for a session.
func (s *Service) Transcript(ctx context.Context, sessionID string) ([]Turn, error) {
	if _, err := s.session(sessionID); err != nil {
		return nil, err
	}
	return s.transcripts.List(ctx, sessionID)
}

// State reports the current dialogue state for a session.
func (s *Service) State(sessionID string) (State, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return "", err
	}
	return s.stateOf(sess), nil
}

// Appointment returns the session's current view of its record, including
// any merges from completed updates.
func (s *Service) Appointment(sessionID string) (appointments.Appointment, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return appointments.Appointment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return sess.appt, nil
}

// applyUpdate issues the single store update for a recognized intent. On
// success the merged record replaces the session's view and is handed to the
// update callback; on failure the error text joins the transcript and the
// dialogue stays open in its current state.
func (s *Service) applyUpdate(ctx context.Context, sess *session, action string, update appointments.PartialUpdate, reply string) (Turn, State, error) {
	s.mu.Lock()
	apptID := sess.appt.ID
	s.mu.Unlock()

	if err := s.store.UpdateByID(ctx, apptID, update); err != nil {
		s.logger.Error("appointment update failed", "session_id", sess.id, "action", action, "error", err)
		turn := s.appendAssistant(ctx, sess.id, "Error: "+err.Error())
		return turn, s.stateOf(sess), nil
	}

	s.mu.Lock()
	sess.appt = update.ApplyTo(sess.appt)
	merged := sess.appt
	sess.state = StateAwaitingInput
	s.mu.Unlock()

	if s.onUpdate != nil {
		s.onUpdate(merged, action)
	}
	s.logger.Info("appointment updated via call",
		"session_id", sess.id,
		"appointment_id", merged.ID,
		"action", action,
	)
	return s.appendAssistant(ctx, sess.id, reply), StateAwaitingInput, nil
}

func (s *Service) session(sessionID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) setState(sess *session, state State) {
	s.mu.Lock()
	sess.state = state
	s.mu.Unlock()
}

func (s *Service) stateOf(sess *session) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sess.state
}

func (s *Service) appendAssistant(ctx context.Context, sessionID, content string) Turn {
	turn := Turn{Role: RoleAssistant, Content: content}
	s.appendTurn(ctx, sessionID, turn)
	return turn
}

func (s *Service) appendTurn(ctx context.Context, sessionID string, turn Turn) {
	if err := s.transcripts.Append(ctx, sessionID, turn); err != nil {
		// Transcript persistence is best effort; the dialogue itself stays up.
		s.logger.Warn("transcript append failed", "session_id", sessionID, "error", err)
	}
}
