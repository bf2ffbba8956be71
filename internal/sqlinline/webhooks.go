package sqlinline

// QInsertWebhookEvent relies on the (provider, event_id) unique constraint
// so duplicate deliveries insert zero rows.
const QInsertWebhookEvent = `--sql b4158fa6-f533-44ea-9ad7-66977a19c67c
insert into webhook_events (id, provider, event_id, payload, created_at)
values (gen_random_uuid(), $1::text, $2::text, $3::jsonb, now())
on conflict (provider, event_id) do nothing;
`
