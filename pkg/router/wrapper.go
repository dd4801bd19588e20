package router

import (
	"encoding/json"
	"net/http"

	"github.com/solotto-lab/backend/pkg/errorx"
	"github.com/mitchellh/mapstructure"
)

func wrapHandler[Request, Response any](
	r *Router,
	method string,
	handler HandlerFunc[Request, Response],
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, httpReq *http.Request) {
		if httpReq.Method != method {
			writeResponse(w, newErrorResponse(
				errorx.New(errorx.BadRequest, "Not supported method %s", httpReq.Method)))
			return
		}

		var req Request
		var err error
		switch method {
		case http.MethodGet:
			err = bindQuery(httpReq, &req)
		case http.MethodPost:
			err = json.NewDecoder(httpReq.Body).Decode(&req)
		}
		if err != nil {
			writeResponse(w, newErrorResponse(errorx.New(errorx.BadRequest, "Cannot parse the request")))
			return
		}

		ctx := r.baseContext(httpReq)
		ctx = withHTTPRequest(ctx, httpReq)
		for _, middleware := range r.before {
			ctx, err = middleware(ctx)
			if err != nil {
				writeResponse(w, newErrorResponse(err))
				return
			}
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			writeResponse(w, newErrorResponse(err))
			return
		}

		writeResponse(w, newResponse(resp))
	})
}

// bindQuery decodes url query parameters into the request struct using its
// json field names. Numeric fields are parsed weakly since query values are
// always strings.
func bindQuery(httpReq *http.Request, req any) error {
	values := map[string]string{}
	for key, value := range httpReq.URL.Query() {
		if len(value) > 0 {
			values[key] = value[0]
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           req,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(values)
}
