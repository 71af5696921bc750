/*
Copyright 2026 the E-Pasar Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package harness

import (
	"strconv"
)

// Role is the kind of user a session belongs to.
type Role string

const (
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
	RoleAdmin  Role = "admin"
)

// Session is an authenticated user.
type Session struct {
	Username string
	Token    string
	UserID   int
	UserAuth string
}

// Key names a value captured from a response for use by later scenarios.
type Key string

// RunContext is the state of a single run.  It is owned by the goroutine
// running the suite.
type RunContext struct {
	// ID uniquely identifies the run.
	ID string

	Log    *ResultLog
	Runner *Runner

	sessions map[Role]Session
	active   Role
	values   map[Key]string
}

// NewRunContext creates an empty run.
func NewRunContext(id string, log *ResultLog, runner *Runner) *RunContext {
	return &RunContext{
		ID:       id,
		Log:      log,
		Runner:   runner,
		sessions: map[Role]Session{},
		values:   map[Key]string{},
	}
}

// SetSession stores a session.  It does not change the active role, see
// Activate.
func (c *RunContext) SetSession(role Role, session Session) {
	c.sessions[role] = session

	if c.active == role {
		c.Runner.SetAuthToken(session.Token)
	}
}

// Session returns the session for a role.
func (c *RunContext) Session(role Role) (Session, bool) {
	session, ok := c.sessions[role]

	return session, ok
}

// Activate makes the role's token the default for requests.  With no
// session for the role requests become anonymous.
func (c *RunContext) Activate(role Role) bool {
	session, ok := c.sessions[role]

	c.active = role
	c.Runner.SetAuthToken(session.Token)

	return ok
}

// ActiveRole returns the role whose token is sent by default.
func (c *RunContext) ActiveRole() Role {
	return c.active
}

// Set stores a value.
func (c *RunContext) Set(key Key, value string) {
	c.values[key] = value
}

// SetInt stores an integer value.
func (c *RunContext) SetInt(key Key, value int) {
	c.Set(key, strconv.Itoa(value))
}

// Value returns a stored value.
func (c *RunContext) Value(key Key) (string, bool) {
	value, ok := c.values[key]

	return value, ok
}

// Int returns a stored integer value.
func (c *RunContext) Int(key Key) (int, bool) {
	value, ok := c.values[key]
	if !ok {
		return 0, false
	}

	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}

	return i, true
}
