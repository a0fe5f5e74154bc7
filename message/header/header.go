package header

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/zostay/go-addr/pkg/addr"

	"github.com/sideeffffect/emil/message/header/param"
)

// Errors returned by various header methods and functions.
var (
	// ErrNoSuchField is returned by getters when the named field is not set on
	// the header.
	ErrNoSuchField = errors.New("no such header field")

	// ErrNoSuchFieldParameter is returned by getters when the named field
	// exists, but the requested parameter of that field does not.
	ErrNoSuchFieldParameter = errors.New("no such header field parameter")

	// ErrManyFields is returned by getters that expect a single field when
	// more than one field with the given name is present.
	ErrManyFields = errors.New("many header fields found")

	// ErrWrongAddressType is returned by address setters that accept either a
	// string or an addr.Address when handed anything else.
	ErrWrongAddressType = errors.New("incorrect address type during write")
)

// Standard header names from RFC 5322, plus the MIME headers from RFC 2045
// this library reads and writes.
const (
	Bcc                     = "Bcc"
	Cc                      = "Cc"
	Comments                = "Comments"
	ContentDisposition      = "Content-disposition"
	ContentID               = "Content-id"
	ContentTransferEncoding = "Content-transfer-encoding"
	ContentType             = "Content-type"
	Date                    = "Date"
	From                    = "From"
	InReplyTo               = "In-reply-to"
	Keywords                = "Keywords"
	MessageID               = "Message-id"
	MIMEVersion             = "MIME-Version"
	Received                = "Received"
	References              = "References"
	ReplyTo                 = "Reply-to"
	Sender                  = "Sender"
	Subject                 = "Subject"
	To                      = "To"
	UserAgent               = "User-agent"
)

// Date formats seen in the wild that the usual parsers choke on.
const (
	// UnixDateWithEarlyYear puts the year where the timezone usually goes.
	UnixDateWithEarlyYear = "Mon Jan 02 15:04:05 2006 MST"
)

// Header wraps a Base, which does the actual storage and whole-field
// manipulation, and adds methods that interpret field bodies: dates,
// addresses, parameterized values, and the common RFC 5322 fields by name.
// Parsed values are cached, so repeated reads of the same field are cheap.
//
// Getters return ErrNoSuchField when the field being read is not set on the
// header.
type Header struct {
	// Base provides the low-level storage of header fields.
	Base

	// valueCache holds the parsed value for a header field, keyed by
	// lowercased field name. Only immutable values may be stored here,
	// otherwise a caller could mutate a cached value and make the cache
	// disagree with the fields in Base.
	valueCache map[string]any
}

// Clone returns a deep copy of the header.
func (h *Header) Clone() *Header {
	// cached values are immutable, copying the map entries as-is is fine
	vc := make(map[string]any, len(h.valueCache))
	for k, v := range h.valueCache {
		vc[k] = v
	}

	return &Header{
		Base:       *h.Base.Clone(),
		valueCache: vc,
	}
}

// getValue retrieves the cached value for a field name. The second return
// value reports whether a cached value was present.
func (h *Header) getValue(name string) (any, bool) {
	n := strings.ToLower(name)
	v, found := h.valueCache[n]
	return v, found
}

// setValue replaces the cached value for the given name.
func (h *Header) setValue(name string, value any) {
	if h.valueCache == nil {
		h.valueCache = make(map[string]any, h.Len())
	}
	n := strings.ToLower(name)
	h.valueCache[n] = value
}

// Get retrieves the body of the named field as a string.
//
// If the named field is not set, it returns an empty string with
// ErrNoSuchField. If the field is set more than once, it returns the first
// body found together with ErrManyFields.
func (h *Header) Get(name string) (string, error) {
	ixs := h.GetIndexesNamed(name)
	if len(ixs) == 0 {
		return "", ErrNoSuchField
	}

	b := h.GetField(ixs[0]).Body()
	if len(ixs) > 1 {
		return b, ErrManyFields
	}

	return b, nil
}

// ParseTime is the date parsing used by GetTime() and GetDate(), usable on any
// field body. The RFC 5322 format is tried first, then the large collection of
// formats dateparse knows, then the oddball formats this library has collected
// from real mail.
//
// It returns the parsed time or the parse error.
func ParseTime(body string) (time.Time, error) {
	t, err := mail.ParseDate(body)
	if err == nil {
		return t, nil
	}

	t, err = dateparse.ParseAny(body)
	if err == nil {
		return t, nil
	}

	t, err = time.Parse(UnixDateWithEarlyYear, body)
	if err == nil {
		return t, nil
	}

	return t, fmt.Errorf("time string %q cannot be parsed", body)
}

// getTime parses the header body as a date and caches the result.
func (h *Header) getTime(name string) (time.Time, error) {
	body, err := h.Get(name)
	if err != nil {
		return time.Time{}, err
	}

	t, err := ParseTime(body)
	if err != nil {
		return t, err
	}

	h.setValue(name, t)

	return t, nil
}

// GetTime reads the named field as a time.Time, trying many formats beyond
// the one RFC 5322 specifies (though that one is tried first).
//
// It returns the zero value with ErrNoSuchField if the field is not set, with
// ErrManyFields if the field is set more than once, and with a parse error if
// the body cannot be read as a date in any known format.
func (h *Header) GetTime(name string) (time.Time, error) {
	v, found := h.getValue(name)
	if !found {
		return h.getTime(name)
	}

	t, isTime := v.(time.Time)
	if !isTime {
		return h.getTime(name)
	}

	return t, nil
}

// ParseAddressList is the address parsing used by GetAddressList() and
// GetAllAddressLists(), usable on any field body. A strict parse is attempted
// first. When that fails, an extremely lenient parse takes over, which returns
// something for any input whatsoever. The lenient results can be strange for
// strange input, which is the price of never failing on the mess real mail
// contains.
func ParseAddressList(body string) addr.AddressList {
	al, err := addr.ParseEmailAddressList(body)
	if err != nil {
		al = parseEmailAddressList(body)
	}

	return al
}

// getAddressList parses an addr.AddressList out of the field and caches it.
func (h *Header) getAddressList(name string) (addr.AddressList, error) {
	body, err := h.Get(name)
	if err != nil {
		return nil, err
	}

	al := ParseAddressList(body)
	h.setValue(name, al)

	return al, nil
}

// GetAddressList reads the named field as an addr.AddressList. Parsing is
// strict-then-lenient per ParseAddressList, so a badly formatted field yields
// a best-effort value rather than an error.
//
// It returns nil with ErrNoSuchField if the field is not set and ErrManyFields
// if it is set more than once.
func (h *Header) GetAddressList(name string) (addr.AddressList, error) {
	v, found := h.getValue(name)
	if !found {
		return h.getAddressList(name)
	}

	al, isAddrList := v.(addr.AddressList)
	if !isAddrList {
		return h.getAddressList(name)
	}

	return al, nil
}

// getAllAddressLists parses an addr.AddressList out of every field with the
// given name and caches the result.
func (h *Header) getAllAddressLists(name string) ([]addr.AddressList, error) {
	bs, err := h.GetAll(name)
	if err != nil {
		return nil, err
	}

	allAl := make([]addr.AddressList, 0, len(bs))
	for _, b := range bs {
		al := ParseAddressList(b)
		allAl = append(allAl, al)
	}

	h.setValue(name, allAl)

	return allAl, nil
}

// GetAllAddressLists reads every field with the given name as an
// addr.AddressList and returns them in header order. Parsing is
// strict-then-lenient per ParseAddressList.
//
// It returns nil with ErrNoSuchField if no field with the name is set.
func (h *Header) GetAllAddressLists(name string) ([]addr.AddressList, error) {
	v, found := h.getValue(name)
	if !found {
		return h.getAllAddressLists(name)
	}

	als, isAddrLists := v.([]addr.AddressList)
	if !isAddrLists {
		return h.getAllAddressLists(name)
	}

	return als, nil
}

// getParamValue parses a param.Value out of the given field and caches it.
func (h *Header) getParamValue(name string) (*param.Value, error) {
	body, err := h.Get(name)
	if err != nil {
		return nil, err
	}

	pv, err := param.Parse(body)
	if err != nil {
		return nil, err
	}

	h.setValue(name, pv)

	return pv, nil
}

// GetParamValue reads the named field as a param.Value.
//
// It returns nil with ErrNoSuchField if the field is not set, with
// ErrManyFields if it is set more than once, and with a parse error if the
// body cannot be read as a parameterized value.
func (h *Header) GetParamValue(name string) (*param.Value, error) {
	v, found := h.getValue(name)
	if !found {
		return h.getParamValue(name)
	}

	pv, isPV := v.(*param.Value)
	if !isPV {
		return h.getParamValue(name)
	}

	if pv == nil {
		return pv, nil
	}

	// hand out a copy so the cached value cannot be modified
	return pv.Clone(), nil
}

// getKeywordsList collects keywords from every field with the given name and
// caches the result.
func (h *Header) getKeywordsList(name string) ([]string, error) {
	bs, err := h.GetAll(name)
	if err != nil {
		return nil, err
	}

	allKs := make([]string, 0, len(bs)*2)
	for _, b := range bs {
		ks := strings.Split(b, ",")
		for _, k := range ks {
			nextK := strings.TrimSpace(k)
			if nextK != "" {
				allKs = append(allKs, nextK)
			}
		}
	}

	h.setValue(name, allKs)

	return allKs, nil
}

// GetKeywordsList reads every field with the given name as a comma-separated
// keyword list, in the manner of the Keywords header, and returns the
// accumulated keywords. This is the generic form that lets any header be
// treated as Keywords.
//
// It returns nil with ErrNoSuchField if no field with the name is set.
func (h *Header) GetKeywordsList(name string) ([]string, error) {
	v, found := h.getValue(name)
	if !found {
		return h.getKeywordsList(name)
	}

	ks, isStringSlice := v.([]string)
	if !isStringSlice {
		return h.getKeywordsList(name)
	}

	return ks, nil
}

// getAll fetches the bodies of all fields with the given name and caches them.
func (h *Header) getAll(name string) ([]string, error) {
	fs := h.GetAllFieldsNamed(name)
	if len(fs) == 0 {
		return nil, ErrNoSuchField
	}

	bs := make([]string, len(fs))
	for i, f := range fs {
		bs[i] = f.Body()
	}

	h.setValue(name, bs)

	return bs, nil
}

// GetAll fetches the bodies of all fields with the given name, in header
// order.
//
// It returns nil with ErrNoSuchField if no field with the name is set.
func (h *Header) GetAll(name string) ([]string, error) {
	v, found := h.getValue(name)
	if !found {
		return h.getAll(name)
	}

	ss, isStringSlice := v.([]string)
	if !isStringSlice {
		return h.getAll(name)
	}

	return ss, nil
}

// SetAll replaces all the fields with the given name with the given bodies.
// After this returns, the named field occurs exactly len(bodies) times in the
// header: existing fields have their bodies replaced in place, extra new
// fields are appended to the end, and extra old fields are deleted.
func (h *Header) SetAll(name string, bodies ...string) {
	ixs := h.GetIndexesNamed(name)

	for i, b := range bodies {
		if i < len(ixs) {
			f := h.GetField(ixs[i])
			f.SetBody(b)
			continue
		}

		h.InsertBeforeField(h.Len(), name, b)
	}

	if len(ixs) > len(bodies) {
		for i := len(ixs) - 1; i >= len(bodies); i-- {
			_ = h.DeleteField(ixs[i])
		}
	}
}

// SetKeywordsList replaces all fields with the given name with a single field
// carrying the given keywords, comma-separated.
func (h *Header) SetKeywordsList(name string, keywords ...string) {
	h.setValue(name, keywords)
	bodyStr := strings.Join(keywords, ", ")
	h.Set(name, bodyStr)
}

// Set replaces all fields with the given name with a single field carrying
// the given body. If the field already exists, the first occurrence is
// replaced in place and the rest are deleted. If it does not, the new field is
// appended to the end of the header.
//
// All the single-valued Set* methods funnel through this replacement
// procedure.
func (h *Header) Set(name, body string) {
	ixs := h.GetIndexesNamed(name)

	if len(ixs) == 0 {
		h.InsertBeforeField(h.Len(), name, body)
		return
	}

	if len(ixs) > 1 {
		for i := len(ixs) - 1; i > 0; i-- {
			// only deletes known indexes, cannot be out of range
			_ = h.DeleteField(ixs[i])
		}
	}

	f := h.GetField(ixs[0])
	f.SetName(name)
	f.SetBody(body)
}

// SetTime replaces all fields with the given name with a single field
// carrying the given time, formatted per time.RFC1123Z.
func (h *Header) SetTime(name string, body time.Time) {
	h.setValue(name, body)
	bodyStr := body.Format(time.RFC1123Z)
	h.Set(name, bodyStr)
}

// SetAddressList replaces all fields with the given name with a single field
// carrying the given addresses.
func (h *Header) SetAddressList(name string, body ...addr.Address) {
	h.setValue(name, body)
	bodyStr := addr.AddressList(body).String()
	h.Set(name, bodyStr)
}

// SetAllAddressLists replaces all fields with the given name with one field
// per given addr.AddressList.
func (h *Header) SetAllAddressLists(name string, bodies ...addr.AddressList) {
	h.setValue(name, bodies)
	strs := make([]string, len(bodies))
	for i, body := range bodies {
		strs[i] = body.String()
	}
	h.SetAll(name, strs...)
}

// SetParamValue replaces all fields with the given name with a single field
// carrying the given param.Value.
func (h *Header) SetParamValue(name string, body *param.Value) {
	h.setValue(name, body)
	bodyStr := body.String()
	h.Set(name, bodyStr)
}

// getParamValueValue reads the primary value of a param.Value header.
func (h *Header) getParamValueValue(name string) (string, error) {
	pv, err := h.GetParamValue(name)
	if err != nil {
		return "", err
	}

	return pv.Value(), nil
}

// setParamValueValue sets the primary value of a param.Value header,
// preserving any parameters already present.
func (h *Header) setParamValueValue(name, v string) {
	// clear out duplicates first so GetParamValue cannot hit ErrManyFields
	ixs := h.GetIndexesNamed(name)
	for i := len(ixs) - 1; i > 0; i-- {
		_ = h.DeleteField(ixs[i])
	}

	pv, err := h.GetParamValue(name)
	if err != nil {
		// unreadable or missing, overwrite the whole field
		pv = param.New(v)
	} else {
		// keep the parameters, swap the primary value
		pv = param.Modify(pv, param.Change(v))
	}

	h.SetParamValue(name, pv)
}

// getParamValueParam reads a named parameter of a param.Value header.
func (h *Header) getParamValueParam(name, p string) (string, error) {
	pv, err := h.GetParamValue(name)
	if err != nil {
		return "", err
	}

	if v := pv.Parameter(p); v != "" {
		return v, nil
	}

	return "", ErrNoSuchFieldParameter
}

// setParamValueParam sets a named parameter of a param.Value header. The
// field must already exist.
func (h *Header) setParamValueParam(name, p, v string) error {
	pv, err := h.GetParamValue(name)
	if err != nil {
		return err
	}

	newPv := param.Modify(pv, param.Set(p, v))
	h.SetParamValue(name, newPv)

	return nil
}

// GetContentType returns the Content-type header as a param.Value.
//
// It returns nil with ErrNoSuchField if the field is not set, with
// ErrManyFields if it is set more than once, and with a parse error if the
// body cannot be read as a parameterized value.
func (h *Header) GetContentType() (*param.Value, error) {
	return h.GetParamValue(ContentType)
}

// SetContentType replaces the Content-type header with the given param.Value.
func (h *Header) SetContentType(v *param.Value) {
	h.SetParamValue(ContentType, v)
}

// GetMediaType returns the MIME type from the Content-type header, without
// its parameters.
//
// Errors are as for GetContentType.
func (h *Header) GetMediaType() (string, error) {
	return h.getParamValueValue(ContentType)
}

// SetMediaType replaces the MIME type on the Content-type header, creating
// the header if it is missing and preserving any parameters already set on
// it. If the header is set multiple times (in violation of RFC 5322), all but
// the first instance are removed.
func (h *Header) SetMediaType(mt string) {
	h.setParamValueValue(ContentType, mt)
}

// GetCharset returns the charset parameter of the Content-type header.
//
// It returns an empty string with ErrNoSuchField when the field is missing,
// with ErrNoSuchFieldParameter when the field is present but carries no
// charset, with ErrManyFields when the field is set more than once, and with
// a parse error when the field body cannot be read.
func (h *Header) GetCharset() (string, error) {
	return h.getParamValueParam(ContentType, param.Charset)
}

// SetCharset sets the charset parameter of the Content-type header.
//
// It fails with ErrNoSuchField if the Content-type field is not set and with
// a parse error if the field body cannot be read.
func (h *Header) SetCharset(c string) error {
	return h.setParamValueParam(ContentType, param.Charset, c)
}

// GetBoundary returns the boundary parameter of the Content-type header.
//
// Errors are as for GetCharset.
func (h *Header) GetBoundary() (string, error) {
	return h.getParamValueParam(ContentType, param.Boundary)
}

// SetBoundary sets the boundary parameter of the Content-type header.
//
// Errors are as for SetCharset.
func (h *Header) SetBoundary(b string) error {
	return h.setParamValueParam(ContentType, param.Boundary, b)
}

// GetContentDisposition returns the Content-disposition header as a
// param.Value.
//
// Errors are as for GetContentType.
func (h *Header) GetContentDisposition() (*param.Value, error) {
	return h.GetParamValue(ContentDisposition)
}

// SetContentDisposition replaces the Content-disposition header with the
// given param.Value.
func (h *Header) SetContentDisposition(v *param.Value) {
	h.SetParamValue(ContentDisposition, v)
}

// GetPresentation returns the primary value of the Content-disposition
// header, normally "inline" or "attachment".
//
// Errors are as for GetContentType.
func (h *Header) GetPresentation() (string, error) {
	return h.getParamValueValue(ContentDisposition)
}

// SetPresentation sets the primary value of the Content-disposition header,
// creating the header if it is missing and preserving any parameters already
// set on it.
func (h *Header) SetPresentation(d string) {
	h.setParamValueValue(ContentDisposition, d)
}

// GetFilename returns the filename parameter of the Content-disposition
// header.
//
// Errors are as for GetCharset.
func (h *Header) GetFilename() (string, error) {
	return h.getParamValueParam(ContentDisposition, param.Filename)
}

// SetFilename sets the filename parameter of the Content-disposition header.
//
// Errors are as for SetCharset.
func (h *Header) SetFilename(f string) error {
	return h.setParamValueParam(ContentDisposition, param.Filename, f)
}

// GetContentID returns the Content-id header body with any surrounding angle
// brackets removed.
//
// It returns an empty string with ErrNoSuchField if the field is not set and
// with ErrManyFields if it is set more than once.
func (h *Header) GetContentID() (string, error) {
	b, err := h.Get(ContentID)
	if err != nil {
		return "", err
	}

	b = strings.TrimSpace(b)
	b = strings.TrimPrefix(b, "<")
	b = strings.TrimSuffix(b, ">")

	return b, nil
}

// SetContentID sets the Content-id header, adding the angle brackets the wire
// format wants.
func (h *Header) SetContentID(id string) {
	if !strings.HasPrefix(id, "<") {
		id = "<" + id + ">"
	}
	h.Set(ContentID, id)
}

// GetDate reads the Date header as a time.Time.
//
// Errors are as for GetTime.
func (h *Header) GetDate() (time.Time, error) {
	return h.GetTime(Date)
}

// SetDate updates the Date header from the given time.Time.
func (h *Header) SetDate(d time.Time) {
	h.SetTime(Date, d)
}

// GetSubject returns the body of the Subject header.
//
// It returns an empty string with ErrNoSuchField if Subject is not set and
// with ErrManyFields if it is set more than once.
func (h *Header) GetSubject() (string, error) {
	return h.Get(Subject)
}

// SetSubject replaces the Subject header.
func (h *Header) SetSubject(s string) {
	h.Set(Subject, s)
}

// setAddress sets an address field from values that are each either a string
// or an addr.Address.
func (h *Header) setAddress(n string, as []any) error {
	var al addr.AddressList
	for _, a := range as {
		switch v := a.(type) {
		case string:
			add, err := addr.ParseEmailAddress(v)
			if err != nil {
				return err
			}
			al = append(al, add)
		case addr.Address:
			al = append(al, v)
		default:
			return ErrWrongAddressType
		}
	}
	h.SetAddressList(n, al...)
	return nil
}

// GetTo reads the To header as an addr.AddressList.
//
// Errors are as for GetAddressList.
func (h *Header) GetTo() (addr.AddressList, error) {
	return h.GetAddressList(To)
}

// SetTo sets the To header from values that are each either an addr.Address
// or a string. It fails with an error when handed any other type or when a
// given string does not strictly parse.
func (h *Header) SetTo(a ...any) error {
	return h.setAddress(To, a)
}

// GetCc reads the Cc header as an addr.AddressList.
//
// Errors are as for GetAddressList.
func (h *Header) GetCc() (addr.AddressList, error) {
	return h.GetAddressList(Cc)
}

// SetCc sets the Cc header. Arguments are as for SetTo.
func (h *Header) SetCc(a ...any) error {
	return h.setAddress(Cc, a)
}

// GetBcc reads the Bcc header as an addr.AddressList.
//
// Errors are as for GetAddressList.
func (h *Header) GetBcc() (addr.AddressList, error) {
	return h.GetAddressList(Bcc)
}

// SetBcc sets the Bcc header. Arguments are as for SetTo.
func (h *Header) SetBcc(a ...any) error {
	return h.setAddress(Bcc, a)
}

// GetFrom reads the From header as an addr.AddressList.
//
// Errors are as for GetAddressList.
func (h *Header) GetFrom() (addr.AddressList, error) {
	return h.GetAddressList(From)
}

// SetFrom sets the From header. Arguments are as for SetTo.
func (h *Header) SetFrom(a ...any) error {
	return h.setAddress(From, a)
}

// GetReplyTo reads the Reply-to header as an addr.AddressList.
//
// Errors are as for GetAddressList.
func (h *Header) GetReplyTo() (addr.AddressList, error) {
	return h.GetAddressList(ReplyTo)
}

// SetReplyTo sets the Reply-to header. Arguments are as for SetTo.
func (h *Header) SetReplyTo(a ...any) error {
	return h.setAddress(ReplyTo, a)
}

// GetKeywords returns the keywords accumulated from all Keywords headers.
//
// It returns nil with ErrNoSuchField if Keywords is not set.
func (h *Header) GetKeywords() ([]string, error) {
	return h.GetKeywordsList(Keywords)
}

// SetKeywords sets keywords on the Keywords header.
func (h *Header) SetKeywords(ks ...string) {
	h.SetKeywordsList(Keywords, ks...)
}

// GetComments returns the bodies of all Comments headers.
func (h *Header) GetComments() ([]string, error) {
	return h.GetAll(Comments)
}

// SetComments replaces all Comments headers with the given bodies.
func (h *Header) SetComments(cs ...string) {
	h.SetAll(Comments, cs...)
}

// GetReceived returns the bodies of all Received headers, in the order they
// appear in the header. Received fields are trace fields, so they are never
// merged or deduplicated.
//
// It returns nil with ErrNoSuchField if no Received header is set.
func (h *Header) GetReceived() ([]string, error) {
	return h.GetAll(Received)
}

// AddReceived prepends a Received header, which is where trace fields go when
// a message passes through another hop.
func (h *Header) AddReceived(body string) {
	h.InsertBeforeField(0, Received, body)
}

// GetReferences returns the message ID in the References header, if any.
//
// It returns an empty string with ErrNoSuchField if References is not set and
// with ErrManyFields if it is set more than once.
func (h *Header) GetReferences() (string, error) {
	return h.Get(References)
}

// SetReferences sets the message ID stored in the References header.
func (h *Header) SetReferences(ref string) {
	h.Set(References, ref)
}

// GetInReplyTo returns the message ID in the In-reply-to header, if any.
//
// It returns an empty string with ErrNoSuchField if In-reply-to is not set
// and with ErrManyFields if it is set more than once.
func (h *Header) GetInReplyTo() (string, error) {
	return h.Get(InReplyTo)
}

// SetInReplyTo sets the message ID stored in the In-reply-to header.
func (h *Header) SetInReplyTo(ref string) {
	h.Set(InReplyTo, ref)
}

// GetMessageID returns the body of the Message-id header, if any.
//
// It returns an empty string with ErrNoSuchField if Message-id is not set and
// with ErrManyFields if it is set more than once.
func (h *Header) GetMessageID() (string, error) {
	return h.Get(MessageID)
}

// SetMessageID sets the Message-id header.
func (h *Header) SetMessageID(ref string) {
	h.Set(MessageID, ref)
}

// GetUserAgent returns the body of the User-agent header, if any.
//
// It returns an empty string with ErrNoSuchField if User-agent is not set and
// with ErrManyFields if it is set more than once.
func (h *Header) GetUserAgent() (string, error) {
	return h.Get(UserAgent)
}

// SetUserAgent sets the User-agent header.
func (h *Header) SetUserAgent(ua string) {
	h.Set(UserAgent, ua)
}

// GetSender reads the Sender header as an addr.AddressList.
//
// Errors are as for GetAddressList.
func (h *Header) GetSender() (addr.AddressList, error) {
	return h.GetAddressList(Sender)
}

// SetSender sets the Sender header. Arguments are as for SetTo.
func (h *Header) SetSender(a ...any) error {
	return h.setAddress(Sender, a)
}

// GetTransferEncoding returns the body of the Content-transfer-encoding
// header.
//
// It returns an empty string with ErrNoSuchField if the field is not set and
// with ErrManyFields if it is set more than once.
func (h *Header) GetTransferEncoding() (string, error) {
	return h.Get(ContentTransferEncoding)
}

// SetTransferEncoding replaces the Content-transfer-encoding header with the
// given value.
func (h *Header) SetTransferEncoding(b string) {
	h.Set(ContentTransferEncoding, b)
}

// parseEmailAddressList is the lenient fallback behind ParseAddressList. The
// go-addr parser is strict, which is what you want when validating input a
// person typed. It is not what you want when reading the address fields of
// whatever the Internet delivered. This fallback accepts anything:
//
//  1. Split the string on commas.
//  2. Trim whitespace from each piece.
//  3. Strip out comments (parenthesized text) and hold them.
//  4. All words but the last become the display name.
//  5. The last word becomes the email address.
//
// Some address fields contain things that are not addresses at all, so the
// result will be wrong sometimes. Whatever we find goes into an addr.Mailbox.
// Address groups are rare enough that this code pretends they do not exist,
// which may produce oddness when one is encountered.
func parseEmailAddressList(v string) addr.AddressList {
	extractComments := func(s string) (string, string) {
		var clean, comment strings.Builder
		nestLevel := 0
		for _, c := range s {
			switch {
			case c == '(':
				nestLevel++
				if nestLevel == 1 {
					continue
				} else {
					comment.WriteRune(c)
				}
			case c == ')':
				nestLevel--
				switch {
				case nestLevel == 0:
					continue
				case nestLevel < 0:
					nestLevel = 0
					clean.WriteRune(c)
				default:
					comment.WriteRune(c)
				}
			case nestLevel > 0:
				comment.WriteRune(c)
			default:
				clean.WriteRune(c)
			}
		}

		return clean.String(), comment.String()
	}

	mbs := strings.Split(v, ",")
	as := make(addr.AddressList, 0, len(mbs))
	for _, orig := range mbs {
		mb, com := extractComments(orig)

		mb = strings.TrimSpace(mb)
		com = strings.TrimSpace(com)

		parts := strings.Fields(mb)

		var dn, email string
		switch {
		case len(parts) == 0:
			email = ""
		case len(parts) > 1:
			dn = strings.Join(parts[:len(parts)-1], " ")
			email = parts[len(parts)-1]
		default:
			email = parts[0]
		}

		if email != "" {
			var addrSpec *addr.AddrSpec
			if i := strings.Index(email, "@"); i > -1 {
				addrSpec = addr.NewAddrSpecParsed(
					email[:i],
					email[i+1:],
					email,
				)
			} else {
				addrSpec = addr.NewAddrSpecParsed(
					email,
					"",
					email,
				)
			}

			mailbox, err := addr.NewMailboxParsed(dn, addrSpec, com, orig)
			if err != nil {
				mailbox, _ = addr.NewMailboxParsed(dn, addrSpec, "", orig)
			}

			as = append(as, mailbox)
		}
	}

	return as
}
