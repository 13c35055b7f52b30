package monitor

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"zynqhal/protocol"
)

// Handler decodes a command's arguments from args and encodes the response
// into reply
type Handler func(args *[]byte, reply protocol.OutputBuffer) error

// Command is one entry in the monitor's command dictionary
type Command struct {
	ID      uint16
	Name    string
	Format  string // Argument format, e.g. "addr=%u value=%u"
	Handler Handler
}

// Registry maps command IDs to handlers. Entries without a handler describe
// responses sent back to the host.
type Registry struct {
	mu       sync.RWMutex
	commands map[uint16]*Command
	nameToID map[string]uint16
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[uint16]*Command),
		nameToID: make(map[string]uint16),
	}
}

// Register adds a command under a fixed wire ID. Registering a name twice
// keeps the first entry and returns its ID.
func (r *Registry) Register(id uint16, name string, format string, handler Handler) uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.nameToID[name]; ok {
		return existing
	}

	r.commands[id] = &Command{
		ID:      id,
		Name:    name,
		Format:  format,
		Handler: handler,
	}
	r.nameToID[name] = id
	return id
}

// RegisterResponse records a response message (board -> host)
func (r *Registry) RegisterResponse(id uint16, name string, format string) uint16 {
	return r.Register(id, name, format, nil)
}

// Lookup retrieves a command by name
func (r *Registry) Lookup(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.nameToID[name]
	if !ok {
		return nil, false
	}
	return r.commands[id], true
}

// Count returns the number of registered entries
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Dispatch calls the handler registered for cmdID
func (r *Registry) Dispatch(cmdID uint16, args *[]byte, reply protocol.OutputBuffer) error {
	r.mu.RLock()
	cmd, ok := r.commands[cmdID]
	r.mu.RUnlock()

	if !ok || cmd.Handler == nil {
		return &UnknownCommandError{ID: cmdID}
	}
	return cmd.Handler(args, reply)
}

// Dictionary lists every entry as "name format", ordered by ID
func (r *Registry) Dictionary() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int, 0, len(r.commands))
	for id := range r.commands {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	var sb strings.Builder
	for _, id := range ids {
		cmd := r.commands[uint16(id)]
		sb.WriteString(cmd.Name)
		if cmd.Format != "" {
			sb.WriteString(" ")
			sb.WriteString(cmd.Format)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// UnknownCommandError is returned for IDs with no handler
type UnknownCommandError struct {
	ID uint16
}

func (e *UnknownCommandError) Error() string {
	return "unknown command ID: " + strconv.Itoa(int(e.ID))
}

// Unwrap lets errors.Is match protocol.ErrUnknownCommand
func (e *UnknownCommandError) Unwrap() error {
	return protocol.ErrUnknownCommand
}
