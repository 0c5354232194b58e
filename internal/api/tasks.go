package api

import (
	"context"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	apierrors "github.com/diogo/mcpchat/internal/errors"
	"github.com/diogo/mcpchat/internal/models"
)

// timeLayouts are the timestamp formats accepted in task records. Python
// backends emit ISO 8601 without a zone.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// TasksURL joins a task API base URL with TasksPath
func TasksURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + TasksPath
}

// FetchTasks retrieves the task list from baseURL
func (c *Client) FetchTasks(ctx context.Context, baseURL string) (*models.TaskList, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := TasksURL(baseURL)
	reqID := uuid.NewString()
	c.logger.Debug("fetching tasks",
		zap.String("request_id", reqID),
		zap.String("endpoint", endpoint),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apierrors.NewProtocolError(endpoint, "failed to create request: "+err.Error())
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, reqID)

	body, err := c.do(req, endpoint)
	if err != nil {
		return nil, err
	}

	return ParseTaskList(body, endpoint)
}

// ParseTaskList decodes a {"tasks": [...], "total": n} body
func ParseTaskList(body []byte, endpoint string) (*models.TaskList, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError(endpoint, "response is not valid JSON")
	}

	tasks := gjson.GetBytes(body, PathTasks)
	if !tasks.IsArray() {
		return nil, apierrors.NewParseError(endpoint, "response has no tasks array")
	}

	list := &models.TaskList{Tasks: make([]models.Task, 0, len(tasks.Array()))}
	tasks.ForEach(func(_, item gjson.Result) bool {
		list.Tasks = append(list.Tasks, parseTask(item))
		return true
	})

	if total := gjson.GetBytes(body, PathTotal); total.Exists() {
		list.Total = int(total.Int())
	} else {
		list.Total = len(list.Tasks)
	}

	return list, nil
}

func parseTask(item gjson.Result) models.Task {
	task := models.Task{
		ID:     item.Get(PathTaskID).Int(),
		Title:  item.Get(PathTaskTitle).String(),
		Status: models.TaskStatus(item.Get(PathTaskStatus).String()),
	}

	if desc := item.Get(PathTaskDesc); desc.Exists() && desc.Type != gjson.Null {
		s := desc.String()
		task.Description = &s
	}
	task.DueDate = parseTime(item.Get(PathTaskDue))
	task.CreatedAt = parseTime(item.Get(PathTaskCreated))
	task.UpdatedAt = parseTime(item.Get(PathTaskUpdated))

	return task
}

func parseTime(v gjson.Result) *time.Time {
	if v.Type != gjson.String || v.Str == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v.Str); err == nil {
			return &t
		}
	}
	return nil
}
