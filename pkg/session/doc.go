// Package session stores per-client sessions whose identity slot is an
// auth.State.
//
// A Manager reads the session token through a Transport (an encrypted cookie
// by default, optionally a header for non-browser clients) and loads the
// record from a Store (in memory via go-cache, or Redis). Every change of the
// identity slot goes through Save, which rotates the token:
//
//	sess, err := mgr.Ensure(ctx, w, r)
//	next, res, err := authSvc.Login(ctx, sess.Auth, in)
//	if serr := mgr.Save(ctx, w, sess, next); serr != nil {
//		return serr
//	}
//
// Anonymous and pending sessions use the short Anon timeouts; authenticated
// sessions use the Auth timeouts. Expiry slides with activity up to the
// absolute lifetime.
package session
