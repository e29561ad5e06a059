// Package booking implements the four voice-assistant intents: availability
// check, appointment creation, appointment lookup and cancellation. Every
// handler converts failures into speakable results; nothing is thrown past
// the handler boundary because the upstream voice agent has no fallback for
// silence.
package booking

// AvailabilityArgs are the arguments of the check_availability function call.
type AvailabilityArgs struct {
	PreferredDate string `json:"preferred_date"`
}

// BookArgs are the arguments of the book_appointment function call.
type BookArgs struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email,omitempty"`
	Date          string `json:"appointment_date"`
	StartTime     string `json:"start_time"`
	ServiceType   string `json:"service_type,omitempty"`
}

// LookupArgs are the arguments of the check_appointments function call.
type LookupArgs struct {
	CustomerPhone string `json:"customer_phone,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	DateRange     string `json:"date_range,omitempty"`
}

// CancelArgs are the arguments of the cancel_appointment function call.
type CancelArgs struct {
	BookingID     string `json:"booking_id,omitempty"`
	Date          string `json:"appointment_date,omitempty"`
	StartTime     string `json:"appointment_time,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	Reason        string `json:"cancellation_reason,omitempty"`
}

// AppointmentSummary is the caller-facing view of one appointment.
type AppointmentSummary struct {
	ID        string `json:"id"`
	Service   string `json:"service"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
}

// Result is the uniform handler outcome. Message is always set and always
// speakable; the optional fields depend on the intent.
type Result struct {
	Message       string               `json:"message"`
	Success       *bool                `json:"success,omitempty"`
	Available     *bool                `json:"available,omitempty"`
	Error         string               `json:"error,omitempty"`
	Slots         []string             `json:"available_slots,omitempty"`
	SlotCount     int                  `json:"slot_count,omitempty"`
	AppointmentID string               `json:"appointment_id,omitempty"`
	Appointments  []AppointmentSummary `json:"appointments,omitempty"`
	Count         int                  `json:"count,omitempty"`
}

func boolPtr(v bool) *bool { return &v }

// internal error tags logged alongside apologetic messages
const (
	errTagStore      = "store_error"
	errTagValidation = "validation_error"
)

const apologyMessage = "I'm sorry, I'm having trouble with our booking system right now. " +
	"Please try again in a moment, or call us directly and we'll take care of you."
