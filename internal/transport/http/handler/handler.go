package handler

import (
	"time"

	"github.com/mandalnilabja/inkgate/internal/transport/http/handler/content"
	"github.com/mandalnilabja/inkgate/internal/transport/http/handler/infra"
	"github.com/mandalnilabja/inkgate/internal/transport/http/handler/tattoo"
)

// Repo composes all domain-specific handlers.
type Repo struct {
	Tattoo  *tattoo.Handlers
	Content *content.Handlers
	Infra   *infra.Handlers
}

// NewRepo creates a new instance of the composed handler repository.
func NewRepo(t *tattoo.Handlers, c *content.Handlers) *Repo {
	return &Repo{
		Tattoo:  t,
		Content: c,
		Infra:   infra.New(time.Now()),
	}
}
