// Package cli implements the interactive fmcli shell.
//
// The shell reads one command per line. Backend failures are reported by
// the dispatcher's notification observer, so command handlers only print
// their own results and local errors.
//
// Commands
//
//	help                        list commands
//	register                    create an account (captcha required)
//	login                       log in (captcha required)
//	logout                      log out
//	whoami                      show the session
//	refresh                     reload the profile from the server
//	profile                     edit the profile
//	passwd                      change the password, then log out
//	open <path>                 navigate to a route, e.g. open /user/orders
//	where                       show the current route
//	call <METHOD> <path> [json] send a raw request through the dispatcher
//	exit | quit                 leave
package cli
