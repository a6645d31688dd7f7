package tasks

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrInvalidTask = errors.New("tasks: invalid task")

type Task struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

func NewTask(text string) Task {
	return Task{
		ID:   uuid.NewString(),
		Text: text,
	}
}

// UnmarshalJSON requires text and done to be present with the right types.
// Tasks stored without an id get a fresh one.
func (task *Task) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID   *string `json:"id"`
		Text *string `json:"text"`
		Done *bool   `json:"done"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}
	if raw.Text == nil || raw.Done == nil {
		return fmt.Errorf("%w: text and done are required", ErrInvalidTask)
	}

	task.Text = *raw.Text
	task.Done = *raw.Done
	task.ID = uuid.NewString()
	if raw.ID != nil {
		if _, err := uuid.Parse(*raw.ID); err != nil {
			return fmt.Errorf("%w: id %q: %w", ErrInvalidTask, *raw.ID, err)
		}
		task.ID = *raw.ID
	}

	return nil
}
