package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagepulse/pagepulse/pkg/dom"
	"github.com/pagepulse/pagepulse/pkg/livestate"
)

func authStateOf(t *testing.T, states []livestate.Value) AuthState {
	t.Helper()
	require.Len(t, states, 1)
	state, ok := states[0].(AuthState)
	require.True(t, ok, "expected AuthState, got %T", states[0])
	return state
}

func TestAuthProviderSignedIn(t *testing.T) {
	doc, err := dom.ParseStatic(`<html><body>
		<a href="/logout">Log out</a>
	</body></html>`, "https://example.com")
	require.NoError(t, err)

	p := NewAuthProvider(AuthSelectors{}, nil)
	states, err := p.Collect(doc)
	require.NoError(t, err)

	state := authStateOf(t, states)
	assert.Equal(t, StatusSignedIn, state.Status)
	assert.Equal(t, "a[href=/logout]", state.Indicator)
}

func TestAuthProviderSignedOut(t *testing.T) {
	doc, err := dom.ParseStatic(`<html><body>
		<a class="login-button" href="/account/login">Sign in</a>
	</body></html>`, "")
	require.NoError(t, err)

	p := NewAuthProvider(AuthSelectors{}, nil)
	states, err := p.Collect(doc)
	require.NoError(t, err)

	state := authStateOf(t, states)
	assert.Equal(t, StatusSignedOut, state.Status)
	assert.Equal(t, ".login-button", state.Indicator)
}

func TestAuthProviderSignedInWinsOverSignedOut(t *testing.T) {
	// Some pages render both a profile menu and a stale login link.
	doc, err := dom.ParseStatic(`<html><body>
		<div class="avatar"></div>
		<a href="/login">Sign in</a>
	</body></html>`, "")
	require.NoError(t, err)

	p := NewAuthProvider(AuthSelectors{}, nil)
	states, err := p.Collect(doc)
	require.NoError(t, err)

	assert.Equal(t, StatusSignedIn, authStateOf(t, states).Status)
}

func TestAuthProviderIgnoresHiddenIndicators(t *testing.T) {
	doc, err := dom.ParseStatic(`<html><body>
		<div class="avatar" style="display:none"></div>
		<a href="/login">Sign in</a>
	</body></html>`, "")
	require.NoError(t, err)

	p := NewAuthProvider(AuthSelectors{}, nil)
	states, err := p.Collect(doc)
	require.NoError(t, err)

	assert.Equal(t, StatusSignedOut, authStateOf(t, states).Status)
}

func TestAuthProviderAbsenceIsUnknownNotError(t *testing.T) {
	doc, err := dom.ParseStatic(`<html><body><p>nothing here</p></body></html>`, "")
	require.NoError(t, err)

	p := NewAuthProvider(AuthSelectors{}, nil)
	states, err := p.Collect(doc)
	require.NoError(t, err)

	state := authStateOf(t, states)
	assert.Equal(t, StatusUnknown, state.Status)
	assert.Empty(t, state.Indicator)
}

func TestAuthProviderSkipsBadSelectors(t *testing.T) {
	doc, err := dom.ParseStatic(`<html><body><div id="me"></div></body></html>`, "")
	require.NoError(t, err)

	// First selector uses an unsupported combinator; the second matches.
	p := NewAuthProvider(AuthSelectors{SignedIn: []string{"nav > .user", "#me"}}, nil)
	states, err := p.Collect(doc)
	require.NoError(t, err)

	state := authStateOf(t, states)
	assert.Equal(t, StatusSignedIn, state.Status)
	assert.Equal(t, "#me", state.Indicator)
}

func TestAuthProviderCustomSelectors(t *testing.T) {
	doc, err := dom.ParseStatic(`<html><body>
		<span data-session-active="true"></span>
	</body></html>`, "")
	require.NoError(t, err)

	p := NewAuthProvider(AuthSelectors{SignedIn: []string{"[data-session-active]"}}, nil)
	states, err := p.Collect(doc)
	require.NoError(t, err)

	assert.Equal(t, StatusSignedIn, authStateOf(t, states).Status)
}

func TestAuthProviderCategoryAndDispose(t *testing.T) {
	p := NewAuthProvider(AuthSelectors{}, nil)
	assert.Equal(t, CategoryAuth, p.Category())
	p.Dispose()
	p.Dispose()
}
