package web

import (
	"fmt"
	"net/http"
)

const xrdsDocument = `<?xml version="1.0" encoding="UTF-8"?>
<xrds:XRDS xmlns:xrds="xri://$xrds" xmlns="xri://$xrd*($v*2.0)">
  <XRD>
    <Service priority="0">
      <Type>http://specs.openid.net/auth/2.0/signon</Type>
      <Type>http://openid.net/signon/1.0</Type>
      <URI>%s</URI>
      <LocalID>%s</LocalID>
    </Service>
  </XRD>
</xrds:XRDS>
`

// handleYadis serves the XRDS discovery document relying parties use to
// locate the endpoint.
func (h *Handler) handleYadis(w http.ResponseWriter, r *http.Request) {
	origin := h.origin(r)
	w.Header().Set("Content-Type", "application/xrds+xml")
	fmt.Fprintf(w, xrdsDocument, origin+"/endpoint", origin+"/")
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
