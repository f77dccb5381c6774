package observability

const (
	MHTTPRequests            MetricKey = "http_requests_total"
	MHTTPRequestDuration     MetricKey = "http_request_duration_seconds"
	MCartMutations           MetricKey = "cart_mutations_total"
	MCheckoutRequests        MetricKey = "checkout_requests_total"
	MSettlementProcessed     MetricKey = "settlement_processed_total"
	MExternalRequests        MetricKey = "external_requests_total"
	MExternalRequestDuration MetricKey = "external_request_duration_seconds"
)
