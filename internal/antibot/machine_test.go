package antibot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobscout/internal/browser"
	"go-jobscout/internal/browser/browsertest"
)

func TestDetectSignals(t *testing.T) {
	signals := DefaultSignals()

	tests := []struct {
		name string
		page *browsertest.PageDef
		want bool
	}{
		{
			name: "challenge title",
			page: &browsertest.PageDef{Title: "Just a moment... | site.com"},
			want: true,
		},
		{
			name: "body phrase",
			page: &browsertest.PageDef{Title: "site.com", Body: "Please verify you are a human to continue"},
			want: true,
		},
		{
			name: "normal page",
			page: &browsertest.PageDef{Title: "data analyst jobs", Body: "120 results"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := browsertest.NewSession()
			sess.AddPage("https://site.com", tt.page)
			require.NoError(t, sess.Navigate(context.Background(), "https://site.com"))
			assert.Equal(t, tt.want, signals.Detect(sess))
		})
	}
}

func TestMachineRecovers(t *testing.T) {
	var transitions []State
	recovery := func(ctx context.Context, challengeURL string) ([]browser.Cookie, error) {
		return []browser.Cookie{{Name: "cf_clearance", Value: "fresh"}}, nil
	}
	m := NewMachine(3, recovery, func(from, to State) {
		transitions = append(transitions, to)
	})

	sess := browsertest.NewSession()
	err := m.HandleSuspicion(context.Background(), sess, "https://site.com/search")

	require.NoError(t, err)
	assert.Equal(t, StateNormal, m.State())
	assert.False(t, m.Suspended())
	assert.Equal(t, []State{StateSuspected, StateVerifying, StateRecovered, StateNormal}, transitions)

	cookies, _ := sess.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "cf_clearance", cookies[0].Name)
}

func TestMachineAbandonsAfterMaxAttempts(t *testing.T) {
	attempts := 0
	recovery := func(ctx context.Context, challengeURL string) ([]browser.Cookie, error) {
		attempts++
		return nil, errors.New("still blocked")
	}
	var transitions []State
	m := NewMachine(3, recovery, func(from, to State) {
		transitions = append(transitions, to)
	})

	err := m.HandleSuspicion(context.Background(), browsertest.NewSession(), "https://site.com/search")

	assert.ErrorIs(t, err, ErrAbandoned)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, StateAbandoned, m.State())
	assert.True(t, m.Suspended())
	assert.Equal(t, []State{StateSuspected, StateVerifying, StateAbandoned}, transitions)
}

func TestMachineStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recovery := func(context.Context, string) ([]browser.Cookie, error) {
		t.Fatal("recovery must not run after cancellation")
		return nil, nil
	}
	var transitions []State
	m := NewMachine(3, recovery, func(from, to State) {
		transitions = append(transitions, to)
	})

	err := m.HandleSuspicion(ctx, browsertest.NewSession(), "https://site.com/search")
	assert.ErrorIs(t, err, context.Canceled)

	// shutdown must not show up as abandonment in the run stats
	assert.NotEqual(t, StateAbandoned, m.State())
	assert.NotContains(t, transitions, StateAbandoned)
}
