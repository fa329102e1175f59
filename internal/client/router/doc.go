// Package router models the client's screens as route paths and decides,
// per navigation, whether the current session may enter a route.
//
// Route patterns use chi syntax ({id} parameters, /* catch-all) and are
// matched with a chi mux. The Guard is evaluated in a fixed order: auth
// requirement, admin requirement, already-logged-in, proceed. A Navigator
// owns the current location and applies the Guard on every move.
package router
