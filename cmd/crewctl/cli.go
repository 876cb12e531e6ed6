package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spec-kit/crew-auth/internal/api/dto"
	"github.com/spec-kit/crew-auth/internal/client"
	"github.com/spec-kit/crew-auth/internal/session"
	apperrors "github.com/spec-kit/crew-auth/pkg/util"
)

// assertionKey holds the server-signed assertion next to the session record.
const assertionKey = "crew_assertion_v1"

const usage = `usage: crewctl <command> [args]

commands:
  employees                      list employees who can sign in
  login <employee-id> <pin>      sign in and start a session
  whoami                         show the current session
  open <destination>             check access to /admin, /dispatch or /driver
  shift <truck> <route>          record shift metadata (drivers only)
  trucks | routes                list the fleet catalog
  logout                         revoke the token and end the session
  clear                          forget the local session
  admin create <id> <name> <role>
  admin set-pin <id> <pin>
  admin activate|deactivate <id>`

type assertion struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CLI executes crewctl commands against one server and one local store.
type CLI struct {
	API      *client.Client
	Store    session.Store
	Sessions *session.Manager
	Out      io.Writer
}

// Run dispatches args[0] to its command.
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(c.Out, usage)
		return nil
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "employees":
		return c.employees(ctx)
	case "login":
		if len(rest) != 2 {
			return apperrors.NewInvalidArgument("usage: crewctl login <employee-id> <pin>")
		}
		return c.login(ctx, rest[0], rest[1])
	case "whoami":
		return c.whoami(ctx)
	case "open":
		if len(rest) != 1 {
			return apperrors.NewInvalidArgument("usage: crewctl open <destination>")
		}
		return c.open(ctx, rest[0])
	case "shift":
		if len(rest) != 2 {
			return apperrors.NewInvalidArgument("usage: crewctl shift <truck> <route>")
		}
		return c.shift(ctx, rest[0], rest[1])
	case "trucks":
		return c.trucks(ctx)
	case "routes":
		return c.routes(ctx)
	case "logout":
		return c.logout(ctx)
	case "clear":
		if err := c.Sessions.Clear(ctx); err != nil {
			return err
		}
		return c.forgetAssertion(ctx)
	case "admin":
		return c.admin(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprintln(c.Out, usage)
		return nil
	default:
		return apperrors.NewInvalidArgument(fmt.Sprintf("unknown command %q", cmd))
	}
}

func (c *CLI) employees(ctx context.Context) error {
	roster, err := c.API.ListEmployees(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROLE")
	for _, e := range roster {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Name, e.Role)
	}
	return w.Flush()
}

func (c *CLI) login(ctx context.Context, employeeID, pin string) error {
	resp, err := c.API.Login(ctx, employeeID, pin)
	if err != nil {
		return err
	}
	if err := c.saveAssertion(ctx, assertion{Token: resp.Token, ExpiresAt: resp.ExpiresAt}); err != nil {
		return err
	}
	s, err := c.Sessions.Start(ctx, resp.User.Identity())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "signed in as %s (%s)\n", s.Name, s.Role)
	fmt.Fprintf(c.Out, "home: %s\n", s.Role.Home())
	return nil
}

func (c *CLI) whoami(ctx context.Context) error {
	s, err := c.Sessions.RequireSignedIn(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "%s (%s) %s since %s\n", s.Name, s.EmployeeID, s.Role, s.StartedAt.Format(time.RFC3339))
	if s.Shift != nil {
		fmt.Fprintf(c.Out, "shift: truck %s on %s since %s\n", s.Shift.VehicleID, s.Shift.RouteID, s.Shift.StartedAt.Format(time.RFC3339))
	}
	return nil
}

func (c *CLI) open(ctx context.Context, destination string) error {
	gate := session.NewGate(c.Sessions, nil)
	decision := gate.Check(ctx, destination)
	if !decision.Allowed {
		fmt.Fprintf(c.Out, "denied: redirect to %s\n", decision.Redirect)
		return apperrors.NewPermissionDenied(fmt.Sprintf("access to %s denied", destination))
	}
	fmt.Fprintf(c.Out, "allowed: %s\n", decision.Destination)
	return nil
}

func (c *CLI) shift(ctx context.Context, truck, route string) error {
	s, err := c.Sessions.StartShift(ctx, truck, route)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "shift started: truck %s on %s\n", s.Shift.VehicleID, s.Shift.RouteID)
	return nil
}

func (c *CLI) trucks(ctx context.Context) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}
	trucks, err := c.API.Trucks(ctx, token)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.Out, strings.Join(trucks, "\n"))
	return nil
}

func (c *CLI) routes(ctx context.Context) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}
	routes, err := c.API.Routes(ctx, token)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROUTE\tLABEL\tSITES")
	for _, r := range routes {
		fmt.Fprintf(w, "%s\t%s\t%d\n", r.ID, r.Label, len(r.Sites))
	}
	return w.Flush()
}

// logout ends the local session even when the server cannot be reached.
func (c *CLI) logout(ctx context.Context) error {
	var remoteErr error
	if a, err := c.loadAssertion(ctx); err == nil {
		remoteErr = c.API.Logout(ctx, a.Token)
	}
	if err := c.Sessions.End(ctx); err != nil {
		return err
	}
	if err := c.forgetAssertion(ctx); err != nil {
		return err
	}
	if remoteErr != nil && !errors.Is(remoteErr, apperrors.ErrUnauthenticated) {
		fmt.Fprintf(c.Out, "signed out locally; server logout failed: %s\n", describe(remoteErr))
		return nil
	}
	fmt.Fprintln(c.Out, "signed out")
	return nil
}

func (c *CLI) admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return apperrors.NewInvalidArgument("usage: crewctl admin create|set-pin|activate|deactivate ...")
	}
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	switch sub, rest := args[0], args[1:]; sub {
	case "create":
		if len(rest) != 3 {
			return apperrors.NewInvalidArgument("usage: crewctl admin create <id> <name> <role>")
		}
		view, err := c.API.CreateEmployee(ctx, token, dto.CreateEmployeeRequest{ID: rest[0], Name: rest[1], Role: rest[2]})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.Out, "created %s (%s, %s); set a PIN before first sign-in\n", view.ID, view.Name, view.Role)
		return nil
	case "set-pin":
		if len(rest) != 2 {
			return apperrors.NewInvalidArgument("usage: crewctl admin set-pin <id> <pin>")
		}
		if err := c.API.SetPin(ctx, token, rest[0], rest[1]); err != nil {
			return err
		}
		fmt.Fprintf(c.Out, "PIN updated for %s\n", rest[0])
		return nil
	case "activate", "deactivate":
		if len(rest) != 1 {
			return apperrors.NewInvalidArgument(fmt.Sprintf("usage: crewctl admin %s <id>", sub))
		}
		view, err := c.API.SetActive(ctx, token, rest[0], sub == "activate")
		if err != nil {
			return err
		}
		fmt.Fprintf(c.Out, "%s active=%t\n", view.ID, view.IsActive)
		return nil
	default:
		return apperrors.NewInvalidArgument(fmt.Sprintf("unknown admin command %q", sub))
	}
}

// token returns the stored assertion for a live session.
func (c *CLI) token(ctx context.Context) (string, error) {
	if _, err := c.Sessions.RequireSignedIn(ctx); err != nil {
		return "", err
	}
	a, err := c.loadAssertion(ctx)
	if err != nil {
		return "", apperrors.NewUnauthenticated("no stored credentials; sign in again")
	}
	if !a.ExpiresAt.IsZero() && time.Now().After(a.ExpiresAt) {
		return "", apperrors.NewUnauthenticated("credentials expired; sign in again")
	}
	return a.Token, nil
}

func (c *CLI) saveAssertion(ctx context.Context, a assertion) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return c.Store.Save(ctx, assertionKey, raw)
}

func (c *CLI) loadAssertion(ctx context.Context) (assertion, error) {
	var a assertion
	raw, err := c.Store.Load(ctx, assertionKey)
	if err != nil {
		return a, err
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		return a, err
	}
	if a.Token == "" {
		return a, session.ErrNoValue
	}
	return a, nil
}

func (c *CLI) forgetAssertion(ctx context.Context) error {
	return c.Store.Delete(ctx, assertionKey)
}
