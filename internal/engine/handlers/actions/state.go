package actions

import (
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine/handlers"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/api"
)

// HandleRequestState отдает отправителю полный снимок сессии.
// Снимок - unicast и версию не двигает: это чтение, а не мутация.
func HandleRequestState(ctx handlers.Context) (handlers.Result, error) {
	var r handlers.Result
	r.Send(api.EvtStateSync, handlers.BuildStateSync(ctx))
	return r, nil
}
