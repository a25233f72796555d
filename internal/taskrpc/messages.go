package taskrpc

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"
)

// ErrBadMessage is returned when a Struct lacks a field or has the wrong
// kind of value in it.
var ErrBadMessage = errors.New("malformed message")

// Field names used across the service.
const (
	FieldUsername      = "username"
	FieldPassword      = "password"
	FieldID            = "id"
	FieldUserID        = "user_id"
	FieldDescription   = "description"
	FieldCompleted     = "completed"
	FieldHasAttachment = "has_attachment"
	FieldSkip          = "skip"
	FieldLimit         = "limit"
	FieldTasks         = "tasks"
	FieldURL           = "url"
	FieldAccessToken   = "access_token"
	FieldTokenType     = "token_type"
	FieldExpiresIn     = "expires_in"
)

type Credentials struct {
	Username string
	Password string
}

type User struct {
	ID       int64
	Username string
}

type Token struct {
	AccessToken string
	TokenType   string
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64
}

type Task struct {
	ID            int64
	UserID        int64
	Description   string
	Completed     bool
	HasAttachment bool
}

// TaskPatch carries a partial update; nil fields stay unchanged.
type TaskPatch struct {
	ID          int64
	Description *string
	Completed   *bool
}

type ListRequest struct {
	Skip  int
	Limit int
}

func (c Credentials) Struct() *structpb.Struct {
	return fields(map[string]*structpb.Value{
		FieldUsername: structpb.NewStringValue(c.Username),
		FieldPassword: structpb.NewStringValue(c.Password),
	})
}

func CredentialsFrom(s *structpb.Struct) (Credentials, error) {
	var c Credentials
	var err error
	if c.Username, err = getString(s, FieldUsername); err != nil {
		return c, err
	}
	if c.Password, err = getString(s, FieldPassword); err != nil {
		return c, err
	}
	return c, nil
}

func (u User) Struct() *structpb.Struct {
	return fields(map[string]*structpb.Value{
		FieldID:       intValue(u.ID),
		FieldUsername: structpb.NewStringValue(u.Username),
	})
}

func UserFrom(s *structpb.Struct) (User, error) {
	var u User
	var err error
	if u.ID, err = getInt(s, FieldID); err != nil {
		return u, err
	}
	if u.Username, err = getString(s, FieldUsername); err != nil {
		return u, err
	}
	return u, nil
}

func (t Token) Struct() *structpb.Struct {
	return fields(map[string]*structpb.Value{
		FieldAccessToken: structpb.NewStringValue(t.AccessToken),
		FieldTokenType:   structpb.NewStringValue(t.TokenType),
		FieldExpiresIn:   intValue(t.ExpiresIn),
	})
}

func TokenFrom(s *structpb.Struct) (Token, error) {
	var t Token
	var err error
	if t.AccessToken, err = getString(s, FieldAccessToken); err != nil {
		return t, err
	}
	if t.TokenType, err = getString(s, FieldTokenType); err != nil {
		return t, err
	}
	if t.ExpiresIn, err = getInt(s, FieldExpiresIn); err != nil {
		return t, err
	}
	return t, nil
}

func (t Task) Struct() *structpb.Struct {
	return fields(t.values())
}

func (t Task) values() map[string]*structpb.Value {
	return map[string]*structpb.Value{
		FieldID:            intValue(t.ID),
		FieldUserID:        intValue(t.UserID),
		FieldDescription:   structpb.NewStringValue(t.Description),
		FieldCompleted:     structpb.NewBoolValue(t.Completed),
		FieldHasAttachment: structpb.NewBoolValue(t.HasAttachment),
	}
}

func TaskFrom(s *structpb.Struct) (Task, error) {
	var t Task
	var err error
	if t.ID, err = getInt(s, FieldID); err != nil {
		return t, err
	}
	if t.UserID, err = getInt(s, FieldUserID); err != nil {
		return t, err
	}
	if t.Description, err = getString(s, FieldDescription); err != nil {
		return t, err
	}
	if t.Completed, err = getBool(s, FieldCompleted); err != nil {
		return t, err
	}
	if t.HasAttachment, err = getBool(s, FieldHasAttachment); err != nil {
		return t, err
	}
	return t, nil
}

// TaskList is the reply of ListTasks: {"tasks": [task, ...]}.
func TaskList(tasks []Task) *structpb.Struct {
	list := make([]*structpb.Value, 0, len(tasks))
	for _, t := range tasks {
		list = append(list, structpb.NewStructValue(t.Struct()))
	}
	return fields(map[string]*structpb.Value{
		FieldTasks: structpb.NewListValue(&structpb.ListValue{Values: list}),
	})
}

func TaskListFrom(s *structpb.Struct) ([]Task, error) {
	v, ok := s.GetFields()[FieldTasks]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrBadMessage, FieldTasks)
	}
	lv := v.GetListValue()
	if lv == nil {
		return nil, fmt.Errorf("%w: %q is not a list", ErrBadMessage, FieldTasks)
	}

	out := make([]Task, 0, len(lv.GetValues()))
	for _, item := range lv.GetValues() {
		st := item.GetStructValue()
		if st == nil {
			return nil, fmt.Errorf("%w: task entry is not an object", ErrBadMessage)
		}
		t, err := TaskFrom(st)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// TaskID is the request of GetTask, DeleteTask and the attachment methods.
func TaskID(id int64) *structpb.Struct {
	return fields(map[string]*structpb.Value{
		FieldID: intValue(id),
	})
}

func TaskIDFrom(s *structpb.Struct) (int64, error) {
	return getInt(s, FieldID)
}

// NewTask is the request of CreateTask.
func NewTask(description string) *structpb.Struct {
	return fields(map[string]*structpb.Value{
		FieldDescription: structpb.NewStringValue(description),
	})
}

func NewTaskFrom(s *structpb.Struct) (string, error) {
	return getString(s, FieldDescription)
}

func (p TaskPatch) Struct() *structpb.Struct {
	m := map[string]*structpb.Value{
		FieldID: intValue(p.ID),
	}
	if p.Description != nil {
		m[FieldDescription] = structpb.NewStringValue(*p.Description)
	}
	if p.Completed != nil {
		m[FieldCompleted] = structpb.NewBoolValue(*p.Completed)
	}
	return fields(m)
}

func TaskPatchFrom(s *structpb.Struct) (TaskPatch, error) {
	var p TaskPatch
	var err error
	if p.ID, err = getInt(s, FieldID); err != nil {
		return p, err
	}
	if _, ok := s.GetFields()[FieldDescription]; ok {
		d, err := getString(s, FieldDescription)
		if err != nil {
			return p, err
		}
		p.Description = &d
	}
	if _, ok := s.GetFields()[FieldCompleted]; ok {
		c, err := getBool(s, FieldCompleted)
		if err != nil {
			return p, err
		}
		p.Completed = &c
	}
	return p, nil
}

func (r ListRequest) Struct() *structpb.Struct {
	return fields(map[string]*structpb.Value{
		FieldSkip:  structpb.NewNumberValue(float64(r.Skip)),
		FieldLimit: structpb.NewNumberValue(float64(r.Limit)),
	})
}

// ListRequestFrom reads skip and limit; absent fields are zero.
func ListRequestFrom(s *structpb.Struct) (ListRequest, error) {
	var r ListRequest
	for name, dst := range map[string]*int{FieldSkip: &r.Skip, FieldLimit: &r.Limit} {
		if _, ok := s.GetFields()[name]; !ok {
			continue
		}
		n, err := getInt(s, name)
		if err != nil {
			return r, err
		}
		*dst = int(n)
	}
	return r, nil
}

// URL is the reply of the attachment methods.
func URL(u string) *structpb.Struct {
	return fields(map[string]*structpb.Value{
		FieldURL: structpb.NewStringValue(u),
	})
}

func URLFrom(s *structpb.Struct) (string, error) {
	return getString(s, FieldURL)
}

func fields(m map[string]*structpb.Value) *structpb.Struct {
	return &structpb.Struct{Fields: m}
}

func getString(s *structpb.Struct, name string) (string, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrBadMessage, name)
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: %q is not a string", ErrBadMessage, name)
	}
	return sv.StringValue, nil
}

func getBool(s *structpb.Struct, name string) (bool, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return false, fmt.Errorf("%w: missing %q", ErrBadMessage, name)
	}
	bv, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, fmt.Errorf("%w: %q is not a bool", ErrBadMessage, name)
	}
	return bv.BoolValue, nil
}

// intValue encodes an int64 as a decimal string, the way protojson
// writes 64-bit integers, so no id loses precision as a double.
func intValue(n int64) *structpb.Value {
	return structpb.NewStringValue(strconv.FormatInt(n, 10))
}

// getInt reads a whole number written by intValue. Plain numbers are
// accepted too as long as they fit a double exactly.
func getInt(s *structpb.Struct, name string) (int64, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrBadMessage, name)
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(k.StringValue, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrBadMessage, name)
		}
		return n, nil
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrBadMessage, name)
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("%w: %q is not a number", ErrBadMessage, name)
	}
}
