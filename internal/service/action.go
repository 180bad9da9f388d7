package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"avtopology/internal/future"
	"avtopology/internal/models"
	"avtopology/internal/scheduler"
	"avtopology/internal/transport"
)

const actionTimeout = 10 * time.Second

// Local runs fn on a later scheduler turn and resolves with its result.
// Mock backends use it so that actions complete asynchronously like their
// network counterparts.
func Local[T any](s scheduler.Scheduler, fn func() (T, error)) future.Future[T] {
	f, resolve := future.New[T]()
	s.Schedule(func() {
		resolve(fn())
	})
	return f
}

// Invoke calls a transport action off the scheduler and resolves with its
// outputs. Changed property values arrive separately through events.
func Invoke(c transport.Client, udn string, kind models.ServiceKind, action string, args map[string]string) future.Future[map[string]string] {
	return future.Go(func() (map[string]string, error) {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		out, err := c.Invoke(ctx, udn, string(kind), action, args)
		if err != nil {
			return nil, fmt.Errorf("%s %s.%s: %w", udn, kind, action, err)
		}
		return out, nil
	})
}

// Call is Invoke for actions without outputs.
func Call(c transport.Client, udn string, kind models.ServiceKind, action string, args map[string]string) future.Future[struct{}] {
	return future.Map(Invoke(c, udn, kind, action, args), func(map[string]string) (struct{}, error) {
		return struct{}{}, nil
	})
}

// Props are the raw property values carried by one transport event. Each
// accessor calls set only when the property is present and parses.
type Props map[string]string

func (p Props) Text(name string, set func(string)) {
	if s, ok := p[name]; ok {
		set(s)
	}
}

func (p Props) Uint(name string, set func(uint32)) {
	s, ok := p[name]
	if !ok {
		return
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		p.invalid(name, err)
		return
	}
	set(uint32(v))
}

func (p Props) Int(name string, set func(int32)) {
	s, ok := p[name]
	if !ok {
		return
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		p.invalid(name, err)
		return
	}
	set(int32(v))
}

func (p Props) Bool(name string, set func(bool)) {
	s, ok := p[name]
	if !ok {
		return
	}
	v, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		p.invalid(name, err)
		return
	}
	set(v)
}

// Uints parses a space separated id list.
func (p Props) Uints(name string, set func([]uint32)) {
	s, ok := p[name]
	if !ok {
		return
	}
	fields := strings.Fields(s)
	out := make([]uint32, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			p.invalid(name, err)
			return
		}
		out = append(out, uint32(v))
	}
	set(out)
}

// FormatUints is the inverse of Props.Uints.
func FormatUints(ids []uint32) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, " ")
}

func (p Props) invalid(name string, err error) {
	log.Warn().Err(err).Str("module", "service").Str("property", name).Str("value", p[name]).Msg("ignoring unparseable property")
}
