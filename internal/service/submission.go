package service

import (
	"context"

	"armar/internal/database"
	"armar/internal/events"
	"armar/internal/metrics"
	"armar/internal/models"

	"github.com/rs/zerolog"
)

const (
	notPersistedMessage = "Database not available in this environment"

	// MaxAckErrorLength caps the error text echoed in a "received" acknowledgment.
	MaxAckErrorLength = 120
)

// SubmissionService stores appointments and quote requests. Storage failures never
// reject a submission: the caller gets a "received" acknowledgment instead.
type SubmissionService struct {
	store  database.Store
	bus    *events.Bus
	logger *zerolog.Logger
}

func NewSubmissionService(store database.Store, bus *events.Bus, logger *zerolog.Logger) *SubmissionService {
	return &SubmissionService{store: store, bus: bus, logger: logger}
}

// CreateAppointment validates and stores an appointment. The only error returned is
// a *models.ValidationError, in which case the store is not touched.
func (s *SubmissionService) CreateAppointment(ctx context.Context, appt models.Appointment) (models.Ack, error) {
	if err := models.Validate(appt); err != nil {
		return models.Ack{}, err
	}
	return s.submit(ctx, models.CollectionAppointment, appt, func(id string) (string, events.SubmissionPayload) {
		return events.EventAppointmentCreated, events.SubmissionPayload{
			ID:            id,
			Kind:          models.CollectionAppointment,
			Name:          appt.Name,
			Phone:         appt.Phone,
			Email:         appt.Email,
			Subject:       appt.Service,
			PreferredDate: notifyDate(appt),
			PreferredTime: appt.PreferredTime,
			Message:       appt.Message,
		}
	}), nil
}

// CreateQuote validates and stores a quote request, with the same contract as CreateAppointment.
func (s *SubmissionService) CreateQuote(ctx context.Context, quote models.QuoteRequest) (models.Ack, error) {
	if err := models.Validate(quote); err != nil {
		return models.Ack{}, err
	}
	return s.submit(ctx, models.CollectionQuoteRequest, quote, func(id string) (string, events.SubmissionPayload) {
		return events.EventQuoteCreated, events.SubmissionPayload{
			ID:      id,
			Kind:    models.CollectionQuoteRequest,
			Name:    quote.Name,
			Phone:   quote.Phone,
			Email:   quote.Email,
			Subject: quote.Requirement,
			Budget:  quote.Budget,
		}
	}), nil
}

// notifyDate renders the preferred date for people reading notifications.
func notifyDate(appt models.Appointment) string {
	d, err := appt.Date()
	if err != nil {
		return appt.PreferredDate
	}
	return d.Format("Mon, 02 Jan 2006")
}

func (s *SubmissionService) submit(
	ctx context.Context,
	collection string,
	record any,
	event func(id string) (string, events.SubmissionPayload),
) models.Ack {
	id, err := s.store.CreateDocument(ctx, collection, record)
	if err != nil {
		s.logger.Warn().Err(err).Str("collection", collection).Msg("submission not persisted")
		metrics.IncSubmission(collection, models.StatusReceived)
		return models.Ack{
			Status:  models.StatusReceived,
			Message: notPersistedMessage,
			Error:   truncate(err.Error(), MaxAckErrorLength),
		}
	}

	metrics.IncSubmission(collection, models.StatusSuccess)
	s.logger.Info().Str("collection", collection).Str("id", id).Msg("submission stored")

	eventType, payload := event(id)
	if err := s.bus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("publish submission event")
	}

	return models.Ack{Status: models.StatusSuccess, ID: id}
}

// truncate shortens s to at most n characters.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
