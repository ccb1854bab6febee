package http

import "net/url"

// Redirect builds a callback URL for the sign-in flow. Optional fields are
// simply left unset; serialization to a query string happens in one place.
type Redirect struct {
	Base             string
	Code             string
	State            string
	ErrorCode        string
	ErrorDescription string
}

// URL serializes the redirect. An unparseable base is an error; the caller
// must not send the browser anywhere in that case.
func (rd Redirect) URL() (string, error) {
	u, err := url.Parse(rd.Base)
	if err != nil {
		return "", err
	}

	q := u.Query()
	if rd.Code != "" {
		q.Set("code", rd.Code)
	}
	if rd.ErrorCode != "" {
		q.Set("error", rd.ErrorCode)
	}
	if rd.ErrorDescription != "" {
		q.Set("error_description", rd.ErrorDescription)
	}
	if rd.State != "" {
		q.Set("state", rd.State)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
