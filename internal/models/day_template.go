package models

import "time"

// SlotType tags a template time range with its purpose. Only "activity"
// ranges are schedulable by default.
type SlotType string

const (
	SlotTypeActivity   SlotType = "activity"
	SlotTypeMeal       SlotType = "meal"
	SlotTypeBreak      SlotType = "break"
	SlotTypeRest       SlotType = "rest"
	SlotTypeFree       SlotType = "free"
	SlotTypeAssembly   SlotType = "assembly"
	SlotTypeTransition SlotType = "transition"
)

// DayTemplate is a named, reusable daily skeleton.
type DayTemplate struct {
	ID             string    `db:"id" json:"id"`
	OrganizationID string    `db:"organization_id" json:"organization_id"`
	Name           string    `db:"name" json:"name"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`

	Slots []DayTemplateSlot `db:"-" json:"slots,omitempty"`
}

// DayTemplateSlot is one ordered time range inside a day template. Times are
// local wall-clock HH:MM strings.
type DayTemplateSlot struct {
	ID            string   `db:"id" json:"id"`
	DayTemplateID string   `db:"day_template_id" json:"day_template_id"`
	SortOrder     int      `db:"sort_order" json:"sort_order"`
	StartTime     string   `db:"start_time" json:"start_time"`
	EndTime       string   `db:"end_time" json:"end_time"`
	SlotType      SlotType `db:"slot_type" json:"slot_type"`
	IsSchedulable bool     `db:"is_schedulable" json:"is_schedulable"`
}

// SchedulableSlots returns the template ranges eligible for assignment,
// ordered by sort order.
func (t DayTemplate) SchedulableSlots() []DayTemplateSlot {
	result := make([]DayTemplateSlot, 0, len(t.Slots))
	for _, slot := range t.Slots {
		if slot.IsSchedulable && slot.SlotType == SlotTypeActivity {
			result = append(result, slot)
		}
	}
	return result
}
