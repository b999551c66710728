// Package robots parses robots.txt and answers whether a user-agent may
// fetch a given resource. A RobotsPolicy is built once per origin, at bind
// time: on HTTP 404 it is the permissive empty policy (allow all, per the
// robots.txt spec's required behavior); on any other non-200 response it is
// the maximally restrictive policy, equivalent to "User-agent: *\nDisallow: /".
//
// Robots checks happen before every dispatch the scheduler makes; a denial
// is raised as an error (Disallowed), not returned as a bool a caller could
// silently ignore.
package robots
