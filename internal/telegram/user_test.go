package telegram

import (
	"net/url"
	"testing"
)

func TestParseUser(t *testing.T) {
	values := url.Values{}
	values.Set("user", `{"id":42,"first_name":"Ada","last_name":"L","username":"ada","photo_url":"https://t.me/p.jpg"}`)

	u, err := ParseUser(values)
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != 42 || u.FirstName != "Ada" || u.Username != "ada" {
		t.Errorf("unexpected user: %+v", u)
	}
}

func TestParseUserInvalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing", ""},
		{"not json", "hello"},
		{"zero id", `{"id":0,"first_name":"X"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			values := url.Values{}
			if c.raw != "" {
				values.Set("user", c.raw)
			}
			if _, err := ParseUser(values); err == nil {
				t.Error("expected error")
			}
		})
	}
}
