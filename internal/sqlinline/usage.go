package sqlinline

const QInsertUsageEvent = `--sql 8cf8bda4-e99d-4a64-9918-3b10416a8273
insert into usage_events (id, user_id, job_id, event_type, success, latency_ms, country, created_at)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3::text, $4::boolean, $5::int, $6::text, now());
`

const QSelectUsageSummary = `--sql a8568960-d3d3-4c56-800f-f4a8845a1c83
select
  count(*) filter (where event_type = 'job_submitted')                  as total_jobs,
  count(*) filter (where event_type = 'job_completed' and success)      as completed_jobs,
  count(*) filter (where event_type = 'job_failed')                     as failed_jobs,
  coalesce((select sum(-amount) from credit_ledger
            where entry_type = 'debit' and created_at >= date_trunc('day', now())), 0) as credits_spent
from usage_events
where created_at >= date_trunc('day', now());
`
