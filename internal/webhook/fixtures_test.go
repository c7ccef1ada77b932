package webhook

const (
	stripePaymentSucceeded = `{
		"id": "evt_1",
		"object": "event",
		"type": "payment_intent.succeeded",
		"created": 1767225600,
		"data": {"object": {
			"id": "pi_123",
			"object": "payment_intent",
			"amount": 2599,
			"amount_received": 2599,
			"currency": "usd",
			"status": "succeeded",
			"metadata": {"payment_request_id": "R1", "correlation_id": "corr-1"}
		}}
	}`

	stripePaymentFailed = `{
		"id": "evt_2",
		"object": "event",
		"type": "payment_intent.payment_failed",
		"created": 1767225600,
		"data": {"object": {
			"id": "pi_456",
			"object": "payment_intent",
			"amount": 1000,
			"currency": "eur",
			"status": "requires_payment_method",
			"last_payment_error": {"code": "card_declined", "decline_code": "insufficient_funds", "message": "Your card has insufficient funds."}
		}}
	}`

	stripeRefundUpdated = `{
		"id": "evt_3",
		"object": "event",
		"type": "charge.refund.updated",
		"created": 1767225600,
		"data": {"object": {
			"id": "re_789",
			"object": "refund",
			"amount": 500,
			"currency": "jpy",
			"payment_intent": "pi_123",
			"status": "succeeded"
		}}
	}`

	stripeRefundFailed = `{
		"id": "evt_4",
		"object": "event",
		"type": "charge.refund.updated",
		"created": 1767225600,
		"data": {"object": {
			"id": "re_790",
			"object": "refund",
			"amount": 500,
			"currency": "usd",
			"payment_intent": "pi_123",
			"status": "failed",
			"failure_reason": "expired_or_canceled_card"
		}}
	}`

	stripeChargeRefunded = `{
		"id": "evt_5",
		"object": "event",
		"type": "charge.refunded",
		"created": 1767225600,
		"data": {"object": {
			"id": "ch_1",
			"object": "charge",
			"amount": 2599,
			"amount_refunded": 2599,
			"currency": "usd",
			"payment_intent": "pi_123",
			"refunds": {"object": "list", "data": [
				{"id": "re_900", "object": "refund", "amount": 1000, "currency": "usd", "status": "succeeded"}
			]}
		}}
	}`

	stripeUnknownIntentEvent = `{
		"id": "evt_6",
		"object": "event",
		"type": "payment_intent.processing",
		"created": 1767225600,
		"data": {"object": {"id": "pi_999", "object": "payment_intent", "amount": 100, "currency": "usd"}}
	}`

	paypalCaptureCompleted = `{
		"id": "WH-1",
		"event_type": "PAYMENT.CAPTURE.COMPLETED",
		"resource_type": "capture",
		"create_time": "2026-01-01T10:00:00Z",
		"summary": "Payment completed for $ 25.99 USD",
		"resource": {
			"id": "CAP-1",
			"status": "COMPLETED",
			"amount": {"currency_code": "USD", "value": "25.99"},
			"custom_id": "R1",
			"invoice_id": "RC-1",
			"supplementary_data": {"related_ids": {"order_id": "ORD-1"}}
		}
	}`

	paypalCaptureDenied = `{
		"id": "WH-2",
		"event_type": "PAYMENT.CAPTURE.DENIED",
		"resource_type": "capture",
		"create_time": "2026-01-01T10:00:00Z",
		"summary": "Payment denied",
		"resource": {
			"id": "CAP-2",
			"status": "DECLINED",
			"status_details": {"reason": "DECLINED_BY_RISK_FRAUD_FILTERS"},
			"amount": {"currency_code": "USD", "value": "10.00"}
		}
	}`

	paypalRefunded = `{
		"id": "WH-3",
		"event_type": "PAYMENT.CAPTURE.REFUNDED",
		"resource_type": "refund",
		"create_time": "2026-01-02T10:00:00Z",
		"resource": {
			"id": "REF-1",
			"status": "COMPLETED",
			"amount": {"currency_code": "USD", "value": "5.00"},
			"links": [
				{"href": "https://api.paypal.com/v2/payments/refunds/REF-1", "rel": "self"},
				{"href": "https://api.paypal.com/v2/payments/captures/CAP-1", "rel": "up"}
			]
		}
	}`

	paypalOrderApproved = `{
		"id": "WH-4",
		"event_type": "CHECKOUT.ORDER.APPROVED",
		"resource_type": "checkout-order",
		"create_time": "2026-01-01T09:00:00Z",
		"resource": {
			"id": "ORD-1",
			"status": "APPROVED",
			"purchase_units": [{"reference_id": "default", "custom_id": "R1", "invoice_id": "RC-1", "amount": {"currency_code": "USD", "value": "25.99"}}]
		}
	}`

	canonicalApproved = `{"type": "REQUEST_APPROVED", "payment_token": "tok_abc", "correlation_id": "corr-9"}`

	canonicalRefund = `{
		"type": "refund_success",
		"external_refund_id": "re_1",
		"amount": "99.99",
		"currency": "usd",
		"received_at": "2026-01-03T00:00:00+02:00"
	}`

	bankSettled = `{
		"status": "SETTLED",
		"bank": "SEPA",
		"notification_id": "n-1",
		"reference": "TRX-1",
		"payment_request_id": "R1",
		"amount": "120.50",
		"currency": "eur",
		"timestamp": "2026-01-01T12:00:00Z"
	}`

	bankReturned = `{
		"status": "returned",
		"reference": "TRX-2",
		"amount": 10,
		"currency": "EUR",
		"reason_code": "AC04",
		"reason": "Closed account"
	}`

	bankRefunded = `{
		"status": "REFUNDED",
		"reference": "TRX-1",
		"refund_reference": "RF-1",
		"amount": "20.00",
		"currency": "EUR"
	}`
)
