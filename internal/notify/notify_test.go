package notify

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReplacesEveryOccurrence(t *testing.T) {
	got, err := Render("Oi {name}! {name}, vence em {due_date}.", Values{Name: "Ana", DueDate: "10/04/2024"})
	require.NoError(t, err)
	assert.Equal(t, "Oi Ana! Ana, vence em 10/04/2024.", got)
}

func TestRenderLeavesUnknownBraces(t *testing.T) {
	got, err := Render("{name} {promo} {}", Values{Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "Ana {promo} {}", got)
}

func TestRenderFailsOnMissingValue(t *testing.T) {
	_, err := Render("{name} {id} {due_date} {id}", Values{Name: "Ana"})
	require.ErrorIs(t, err, ErrMissingValue)
	assert.Contains(t, err.Error(), "{due_date}, {id}")
}

func TestRenderDoesNotRecurse(t *testing.T) {
	got, err := Render("{name}", Values{Name: "{id}"})
	require.NoError(t, err)
	assert.Equal(t, "{id}", got)
}

func TestLink(t *testing.T) {
	link, err := Link("+55 (79) 99999-0000", "Olá Ana & cia")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/5579999990000?text=Ol%C3%A1%20Ana%20%26%20cia", link)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Olá Ana & cia", u.Query().Get("text"))

	_, err = Link("n/a", "x")
	assert.ErrorIs(t, err, ErrNoDestination)
}

func TestCompose(t *testing.T) {
	msg, err := Compose("(79) 3043-7610", "Bem-vindo {name}", Values{Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "7930437610", msg.Destination)
	assert.Equal(t, "Bem-vindo Ana", msg.Text)
	assert.Contains(t, msg.Link, "https://wa.me/7930437610?text=")

	_, err = Compose("7930437610", "{due_date}", Values{})
	assert.ErrorIs(t, err, ErrMissingValue)
}
