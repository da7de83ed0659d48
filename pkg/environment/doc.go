// Package environment carries the deployment environment (development,
// staging, production) through request contexts so handlers can switch
// behaviour such as secure cookies or error detail.
package environment
