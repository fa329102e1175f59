package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fleamarket/internal/client/session"
)

// clearValue entered at a profile prompt sets the field to "".
const clearValue = "-"

func (a *App) WhoAmI(ctx context.Context) error {
	snap := a.view.Snapshot()
	if !snap.Authenticated {
		printlnFn("Not logged in.")
		return nil
	}

	p := snap.Profile
	printlnFn(fmt.Sprintf("user id:  %s", snap.Identity.UserID))
	printlnFn(fmt.Sprintf("role:     %s", snap.Identity.Role))
	printlnFn(fmt.Sprintf("username: %s", p.Username))
	printlnFn(fmt.Sprintf("nickname: %s", p.Nickname))
	if p.Avatar != "" {
		printlnFn(fmt.Sprintf("avatar:   %s", p.Avatar))
	}
	if p.Email != "" {
		printlnFn(fmt.Sprintf("email:    %s", p.Email))
	}
	if p.Phone != "" {
		printlnFn(fmt.Sprintf("phone:    %s", p.Phone))
	}
	if p.Bio != "" {
		printlnFn(fmt.Sprintf("bio:      %s", p.Bio))
	}
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Not logged in.")
		return nil
	}
	if err := a.authService.RefreshProfile(ctx); err != nil {
		return err
	}
	return a.WhoAmI(ctx)
}

// EditProfile prompts for every editable field. An empty answer keeps the
// field, "-" clears it.
func (a *App) EditProfile(ctx context.Context) error {
	var upd session.ProfileUpdate
	cur := a.view.Profile()

	fields := []struct {
		label string
		cur   string
		dst   **string
	}{
		{"nickname", cur.Nickname, &upd.Nickname},
		{"avatar URL", cur.Avatar, &upd.Avatar},
		{"email", cur.Email, &upd.Email},
		{"phone", cur.Phone, &upd.Phone},
		{"bio", cur.Bio, &upd.Bio},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, fmt.Sprintf("Enter %s [%s] (empty keeps, %s clears)", f.label, f.cur, clearValue), a.out)
		if err != nil {
			return err
		}
		switch v {
		case "":
		case clearValue:
			empty := ""
			*f.dst = &empty
		default:
			val := v
			*f.dst = &val
		}
	}

	if upd.Empty() {
		printlnFn("Nothing changed.")
		return nil
	}
	if err := a.authService.UpdateProfile(ctx, upd); err != nil {
		return err
	}
	printlnFn("Profile updated.")
	return nil
}
