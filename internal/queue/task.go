package queue

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

type TaskType string

const (
	// TaskIngest re-checks a freshly uploaded product image.
	TaskIngest TaskType = "ingest"
	// TaskCleanup removes images no product refers to.
	TaskCleanup TaskType = "cleanup"
)

type Task struct {
	Type        TaskType `json:"type"`
	Object      string   `json:"object,omitempty"`
	ContentType string   `json:"contentType,omitempty"`
}

// Values flattens t into stream fields. Empty fields are omitted.
func (t Task) Values() map[string]any {
	values := map[string]any{"type": string(t.Type)}
	if t.Object != "" {
		values["object"] = t.Object
	}
	if t.ContentType != "" {
		values["contentType"] = t.ContentType
	}
	return values
}

// DecodeTask reads a task back from stream values. Unknown keys are ignored.
func DecodeTask(values map[string]any) (Task, error) {
	var task Task
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &task,
	})
	if err != nil {
		return Task{}, err
	}
	if err := dec.Decode(values); err != nil {
		return Task{}, fmt.Errorf("decode task: %w", err)
	}
	return task, nil
}
