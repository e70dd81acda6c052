package request_models

// ShippoTrackingUpdate is the carrier-tracking webhook body. Metadata carries
// the marketplace transaction id the shipment belongs to.
type ShippoTrackingUpdate struct {
	Event string `json:"event"`
	Data  struct {
		TrackingNumber string `json:"tracking_number"`
		Metadata       string `json:"metadata"`
		TrackingStatus struct {
			Status        string `json:"status"`
			StatusDetails string `json:"status_details"`
		} `json:"tracking_status"`
	} `json:"data"`
}
