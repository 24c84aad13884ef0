package gateway_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/giamma80/gymbro-platform-sub001/gateway"
)

func TestCheckExposure_SchemaExposed(t *testing.T) {
	c := qt.New(t)

	var gotProfile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotProfile = r.Header.Get("Accept-Profile")
		w.Header().Set("Content-Type", "application/openapi+json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"swagger":"2.0"}`))
	}))
	defer srv.Close()

	checker := gateway.NewChecker(srv.URL, "")
	err := checker.CheckExposure(context.Background(), "calorie_balance")
	c.Assert(err, qt.IsNil)
	c.Assert(gotProfile, qt.Equals, "calorie_balance")
}

func TestCheckExposure_SchemaNotExposed(t *testing.T) {
	c := qt.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotAcceptable)
		_, _ = w.Write([]byte(`{"code":"PGRST106","message":"The schema must be one of the following: public","details":null,"hint":null}`))
	}))
	defer srv.Close()

	checker := gateway.NewChecker(srv.URL, "")
	err := checker.CheckExposure(context.Background(), "meal_tracking")
	c.Assert(err, qt.IsNotNil)
	c.Assert(errors.Is(err, gateway.ErrSchemaNotExposed), qt.IsTrue)

	var notExposed *gateway.NotExposedError
	c.Assert(errors.As(err, &notExposed), qt.IsTrue)
	c.Assert(notExposed.Schema, qt.Equals, "meal_tracking")
	c.Assert(notExposed.Code, qt.Equals, gateway.CodeSchemaNotExposed)
	c.Assert(err.Error(), qt.Contains, "exposed schemas list")
}

func TestCheckExposure_SendsAPIKey(t *testing.T) {
	c := qt.New(t)

	var gotAPIKey, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	checker := gateway.NewChecker(srv.URL, "test-anon-key")
	err := checker.CheckExposure(context.Background(), "public")
	c.Assert(err, qt.IsNil)
	c.Assert(gotAPIKey, qt.Equals, "test-anon-key")
	c.Assert(gotAuth, qt.Equals, "Bearer test-anon-key")
}

func TestCheckExposure_OtherGatewayError(t *testing.T) {
	c := qt.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"No API key found in request","hint":"No 'apikey' request header or url param was found."}`))
	}))
	defer srv.Close()

	checker := gateway.NewChecker(srv.URL, "")
	err := checker.CheckExposure(context.Background(), "public")
	c.Assert(err, qt.IsNotNil)
	c.Assert(errors.Is(err, gateway.ErrSchemaNotExposed), qt.IsFalse)
	c.Assert(err.Error(), qt.Contains, "HTTP 401")
}

func TestCheckExposure_GatewayUnreachable(t *testing.T) {
	c := qt.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	checker := gateway.NewChecker(srv.URL, "")
	err := checker.CheckExposure(context.Background(), "public")
	c.Assert(err, qt.IsNotNil)
	c.Assert(err.Error(), qt.Contains, "failed to reach API gateway")
}
