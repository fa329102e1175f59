package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/fleamarket/internal/client/client"
	"github.com/dmitrijs2005/fleamarket/internal/client/router"
	"github.com/dmitrijs2005/fleamarket/internal/client/services"
	"github.com/dmitrijs2005/fleamarket/internal/client/session"
	"github.com/dmitrijs2005/fleamarket/internal/common"
)

// navigator is the part of *router.Navigator the shell uses.
type navigator interface {
	Navigate(ctx context.Context, target string) (router.Decision, error)
	Current() string
	CurrentMatch() router.Match
}

type App struct {
	authService services.AuthService
	view        session.View
	nav         navigator
	sender      client.Sender
	reader      *bufio.Reader
	out         io.Writer
}

func NewApp(auth services.AuthService, view session.View, nav navigator, sender client.Sender, in io.Reader, out io.Writer) *App {
	return &App{
		authService: auth,
		view:        view,
		nav:         nav,
		sender:      sender,
		reader:      bufio.NewReader(in),
		out:         out,
	}
}

// Run starts the shell and returns when the input ends or the user quits.
func (a *App) Run(ctx context.Context) error {
	printlnFn("Welcome to fleamarket CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.view.IsAuthenticated()
}

// getStatus renders "<name> <role> @ <location>" for the prompt.
func (a *App) getStatus() string {
	who := "anonymous"
	if snap := a.view.Snapshot(); snap.Authenticated {
		name := common.FirstNonEmpty(snap.Profile.Nickname, snap.Profile.Username, "user "+snap.Identity.UserID)
		who = fmt.Sprintf("%s %s", name, snap.Identity.Role)
	}
	return fmt.Sprintf("(%s @ %s)", who, a.nav.Current())
}
