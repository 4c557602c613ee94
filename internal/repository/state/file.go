package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/room-control/internal/config"
	domain "github.com/oshokin/room-control/internal/domain/alarm"
)

// JSON field names of the state file.
const (
	fieldTimestamp = "timestamp"
	fieldLastActor = "last_actor"
	fieldHostname  = "hostname"
	fieldUsername  = "username"
	fieldIsArmed   = "is_armed"
)

// Repository defines persistence operations for the alarm state.
type Repository interface {
	Load(ctx context.Context) (*domain.State, error)
	Save(ctx context.Context, state *domain.State) error
}

// FileRepository persists the alarm state to a JSON file on disk.
// The document is built as a google.protobuf.Struct and rendered with protojson,
// the same encoding the relay uses on the wire.
type FileRepository struct {
	// path is the filesystem location of the JSON state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when the state file does not exist yet.
	ErrNotFound = errors.New("state not found")
	// errMalformed is returned when the file decodes but lacks required fields.
	errMalformed = errors.New("malformed state file")
)

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the state from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var doc structpb.Struct
	if err = protojson.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return fromStruct(&doc)
}

// Save writes the state to disk using JSON representation.
func (r *FileRepository) Save(_ context.Context, state *domain.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
		Indent:    "  ",
	}

	data, err := marshalOptions.Marshal(toStruct(state))
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}

// fromStruct converts the decoded document into the domain State model.
func fromStruct(doc *structpb.Struct) (*domain.State, error) {
	fields := doc.GetFields()

	armed, ok := fields[fieldIsArmed].GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return nil, fmt.Errorf("%w: %s is missing", errMalformed, fieldIsArmed)
	}

	state := &domain.State{IsArmed: armed.BoolValue}

	if raw := fields[fieldTimestamp].GetStringValue(); raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", errMalformed, fieldTimestamp, err)
		}

		state.Timestamp = ts
	}

	if actor := fields[fieldLastActor].GetStructValue(); actor != nil {
		state.LastActor = &domain.Actor{
			Hostname: actor.GetFields()[fieldHostname].GetStringValue(),
			Username: actor.GetFields()[fieldUsername].GetStringValue(),
		}
	}

	return state, nil
}

// toStruct converts the domain State model into the on-disk document.
func toStruct(state *domain.State) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldIsArmed: structpb.NewBoolValue(state.IsArmed),
	}

	if !state.Timestamp.IsZero() {
		fields[fieldTimestamp] = structpb.NewStringValue(state.Timestamp.UTC().Format(time.RFC3339Nano))
	}

	if state.LastActor != nil {
		fields[fieldLastActor] = structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				fieldHostname: structpb.NewStringValue(state.LastActor.Hostname),
				fieldUsername: structpb.NewStringValue(state.LastActor.Username),
			},
		})
	}

	return &structpb.Struct{Fields: fields}
}
