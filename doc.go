// Package emil maps between a typed model of email messages and their MIME
// wire form.
//
// The model is the Mail struct: a MailHeader of typed fields, a MailBody
// holding text and/or HTML content, a list of Attachments with lazily opened
// content, and a bag of additional headers. Serialize renders a Mail into a
// complete MIME message, choosing the multipart structure and transfer
// encodings from the content. Deserialize goes the other way and is tolerant
// by policy: metadata it cannot make sense of degrades to absent fields, and
// only structurally broken input is an error.
//
// The message, message/header, message/transfer and message/walk packages
// underneath are a general MIME toolkit usable on their own; this package is
// the opinionated mapping on top. The builder package offers a declarative
// way to construct a Mail.
package emil
