package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/story-survey-service/internal/collector"
	"github.com/SAP-F-2025/story-survey-service/internal/events"
	"github.com/SAP-F-2025/story-survey-service/internal/flow"
	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/SAP-F-2025/story-survey-service/internal/repositories"
	"github.com/SAP-F-2025/story-survey-service/internal/trials"
	"github.com/SAP-F-2025/story-survey-service/internal/validator"
	"github.com/google/uuid"
)

type SurveyServiceConfig struct {
	Variant     *flow.Variant
	Trials      TrialSource
	Shuffler    trials.Shuffler
	Sessions    repositories.SessionRepository
	Submissions repositories.SubmissionRepository
	Collector   collector.Collector
	Publisher   events.EventPublisher
	Validator   *validator.Validator
	Logger      *slog.Logger
	Now         func() time.Time
}

type surveyService struct {
	variant     *flow.Variant
	nav         *flow.Navigator
	trials      TrialSource
	shuffler    trials.Shuffler
	sessions    repositories.SessionRepository
	submissions repositories.SubmissionRepository
	collector   collector.Collector
	publisher   events.EventPublisher
	validator   *validator.Validator
	logger      *slog.Logger
	opLogger    *ServiceLogger
	locks       *sessionLocks
	now         func() time.Time
}

func NewSurveyService(cfg SurveyServiceConfig) SurveyService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	shuffler := cfg.Shuffler
	if shuffler == nil {
		shuffler = trials.NewFisherYates(nil)
	}
	v := cfg.Validator
	if v == nil {
		v = validator.New()
	}

	return &surveyService{
		variant:     cfg.Variant,
		nav:         flow.NewNavigator(cfg.Variant),
		trials:      cfg.Trials,
		shuffler:    shuffler,
		sessions:    cfg.Sessions,
		submissions: cfg.Submissions,
		collector:   cfg.Collector,
		publisher:   cfg.Publisher,
		validator:   v,
		logger:      logger,
		opLogger:    NewServiceLogger(logger, "survey"),
		locks:       newSessionLocks(),
		now:         now,
	}
}

func (s *surveyService) Definition() *flow.Variant {
	return s.variant
}

// Start loads and shuffles the trials for the condition and opens a session
// on the consent page. The shuffle happens here and nowhere else.
func (s *surveyService) Start(ctx context.Context, req *StartSessionRequest) (view *SessionView, err error) {
	start := time.Now()
	id := uuid.NewString()
	defer func() { s.opLogger.LogOperation(ctx, "start", id, time.Since(start), err) }()

	all, err := s.trials.Load(ctx, req.Condition)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTrialLoadFailed, err)
	}
	if len(all) < s.variant.TrialCount {
		return nil, fmt.Errorf("%w: %w: have %d, need %d",
			ErrTrialLoadFailed, ErrNotEnoughTrials, len(all), s.variant.TrialCount)
	}

	shuffled := make([]models.Trial, len(all))
	copy(shuffled, all)
	s.shuffler.Shuffle(shuffled)

	now := s.now()
	session := &models.Session{
		ID:            id,
		ParticipantID: req.ParticipantID,
		StudyID:       req.ExperimentID,
		Condition:     req.Condition,
		Variant:       s.variant.Name,
		Trials:        shuffled[:s.variant.TrialCount],
		Responses:     make(map[string]string),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	trialIDs := make([]string, len(session.Trials))
	for i, t := range session.Trials {
		trialIDs[i] = t.ID
	}
	s.publish(ctx, session.ID, events.NewSurveyStartedEvent(events.SurveyStartedEvent{
		SessionID:     session.ID,
		ParticipantID: session.ParticipantID,
		StudyID:       session.StudyID,
		Condition:     session.Condition,
		Variant:       string(session.Variant),
		TrialIDs:      trialIDs,
		StartedAt:     now,
	}))

	return s.buildView(session), nil
}

func (s *surveyService) Get(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

func (s *surveyService) View(ctx context.Context, id string) (*SessionView, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildView(session), nil
}

// Record stores the selections of the current request. Either all of them are
// kept or none are.
func (s *surveyService) Record(ctx context.Context, id string, req *RecordRequest) (*SessionView, error) {
	return s.mutate(ctx, "record", id, func(session *models.Session) error {
		if req.Consent != nil {
			session.Consent = *req.Consent
		}
		// exit survey drafts are stored as typed and validated on submit
		if req.Demographics != nil {
			session.Demographics = *req.Demographics
		}
		if len(req.Responses) == 0 {
			return nil
		}
		if err := s.nav.Record(session, req.Responses); err != nil {
			var verrs ValidationErrors
			if errors.As(err, &verrs) {
				s.opLogger.LogValidationError(ctx, "record", id, verrs)
			}
			return err
		}
		return nil
	})
}

func (s *surveyService) Next(ctx context.Context, id string) (*SessionView, error) {
	return s.mutate(ctx, "next", id, func(session *models.Session) error {
		if err := s.nav.Next(session); err != nil {
			if errors.Is(err, flow.ErrComprehensionFailed) {
				page := s.nav.Current(session)
				s.publish(ctx, id, events.NewSurveyGateRejectedEvent(events.SurveyGateRejectedEvent{
					SessionID: id,
					PageIndex: page.Index,
					PageKind:  string(page.Kind),
					Reason:    "comprehension_failed",
				}))
			}
			return gateViolation(err)
		}
		return nil
	})
}

func (s *surveyService) Previous(ctx context.Context, id string) (*SessionView, error) {
	return s.mutate(ctx, "previous", id, func(session *models.Session) error {
		return gateViolation(s.nav.Previous(session))
	})
}

// mutate runs fn on the locked session and saves it. A gate or validation
// failure leaves the stored session untouched.
func (s *surveyService) mutate(ctx context.Context, operation, id string, fn func(*models.Session) error) (view *SessionView, err error) {
	start := time.Now()
	defer func() { s.opLogger.LogOperation(ctx, operation, id, time.Since(start), err) }()

	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Submitted {
		return nil, ErrAlreadySubmitted
	}

	if err := fn(session); err != nil {
		return nil, err
	}

	session.UpdatedAt = s.now()
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return s.buildView(session), nil
}

func (s *surveyService) buildView(session *models.Session) *SessionView {
	page := s.nav.Current(session)
	view := &SessionView{
		ID:            session.ID,
		ParticipantID: session.ParticipantID,
		StudyID:       session.StudyID,
		Condition:     session.Condition,
		Variant:       session.Variant,
		Cursor:        page.Index,
		TotalPages:    s.nav.TotalPages(),
		Progress:      s.nav.Progress(session),
		Page:          page,
		CanAdvance:    s.nav.CanAdvance(session),
		IsFirst:       s.nav.IsFirst(session),
		IsLast:        s.nav.IsLast(session),
		Consent:       session.Consent,
		Submitted:     session.Submitted,
		Responses:     session.Responses,
		Demographics:  session.Demographics,
		Session:       session,
		Definition:    s.variant,
		Pages:         s.nav.Pages(),
	}
	if view.Responses == nil {
		view.Responses = map[string]string{}
	}
	if page.Kind == flow.PageTrial {
		if trial, ok := session.Trial(page.Number); ok {
			view.CurrentTrial = trial
		}
	}
	return view
}

func (s *surveyService) publish(ctx context.Context, sessionID string, event *events.SurveyEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSurveyEvent(ctx, sessionID, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish survey event",
			"session_id", sessionID,
			"event_type", event.Type,
			"error", err)
	}
}
