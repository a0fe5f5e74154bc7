// Package param deals with parameterized header field bodies, the form shared
// by the Content-type and Content-disposition headers. It also provides small
// helpers for pulling apart the MIME types carried in the Content-type header.
package param
