package sqlinline

const QInsertJob = `--sql c3dc47e7-12f5-4dae-abb9-d4e6774534d7
insert into jobs (id, owner_id, job_type, status, provider, provider_task_id, input_params, credits_used)
values ($1::uuid, $2::uuid, $3::text, $4::text, $5::text, $6::text, $7::jsonb, $8::int);
`

const QSelectJobByID = `--sql 36c1602a-324f-48e3-bd46-df3597bf774d
select id, owner_id, job_type, status, provider, provider_task_id, input_params,
       result_url, thumbnail_url, error_message, credits_used, refunded_at,
       created_at, updated_at, completed_at
from jobs
where id = $1::uuid;
`

const QSelectJobByTaskRef = `--sql 265f1e2c-929d-42f0-9c07-9bb4f32a2bd4
select id, owner_id, job_type, status, provider, provider_task_id, input_params,
       result_url, thumbnail_url, error_message, credits_used, refunded_at,
       created_at, updated_at, completed_at
from jobs
where provider = $1::text and provider_task_id = $2::text;
`

const QSelectJobsByOwner = `--sql 8553edc7-b23a-498f-ac3d-9a5fc08b9518
select id, owner_id, job_type, status, provider, provider_task_id, input_params,
       result_url, thumbnail_url, error_message, credits_used, refunded_at,
       created_at, updated_at, completed_at
from jobs
where owner_id = $1::uuid
order by created_at desc
limit $2::int;
`

const QSelectResolvableJobs = `--sql b06b3600-6f0e-4abf-805e-1eeda25fa143
select id, owner_id, job_type, status, provider, provider_task_id, input_params,
       result_url, thumbnail_url, error_message, credits_used, refunded_at,
       created_at, updated_at, completed_at
from jobs
where status in ('IN_QUEUE', 'IN_PROGRESS') and provider_task_id <> ''
order by updated_at asc
limit $1::int;
`

const QSelectStaleJobs = `--sql 1d528634-4b06-4050-a1d9-f1a9e1d723ec
select id, owner_id, job_type, status, provider, provider_task_id, input_params,
       result_url, thumbnail_url, error_message, credits_used, refunded_at,
       created_at, updated_at, completed_at
from jobs
where status not in ('COMPLETED', 'FAILED', 'CANCELLED') and created_at < $1::timestamptz
order by created_at asc
limit $2::int;
`

// Assigning a vendor task starts a fresh paid attempt, so the refund marker
// resets here. A retry that fails again is refundable again.
const QSetJobTaskRef = `--sql 34b63ec0-ba8f-4eee-83d0-78eeaedea099
update jobs
set provider = $2::text,
    provider_task_id = $3::text,
    status = 'IN_QUEUE',
    refunded_at = null,
    updated_at = now()
where id = $1::uuid;
`

const QTransitionJobStatus = `--sql f971fa3f-119b-4af3-82b0-82582e04cbe8
update jobs
set status = $3::text,
    error_message = coalesce($4::text, error_message),
    updated_at = now()
where id = $1::uuid and status = $2::text;
`

const QMarkJobCompleted = `--sql 8b3d3f02-791f-42b5-ba36-f2a31f786b7a
update jobs
set status = 'COMPLETED',
    result_url = $2::text,
    thumbnail_url = $3::text,
    completed_at = now(),
    updated_at = now()
where id = $1::uuid and status not in ('COMPLETED', 'CANCELLED');
`

const QMarkJobFailed = `--sql 91a4ce83-8092-43cb-ae50-c692999c799b
update jobs
set status = 'FAILED',
    error_message = $2::text,
    updated_at = now()
where id = $1::uuid and status not in ('COMPLETED', 'FAILED', 'CANCELLED');
`

const QMarkJobRefunded = `--sql 55a468f4-247f-4b5a-98a7-b36cb92dacf1
update jobs
set refunded_at = now(),
    updated_at = now()
where id = $1::uuid and refunded_at is null;
`

const QDeleteJob = `--sql bb4819d1-6a7f-40e6-9a3e-f0722444c3f0
delete from jobs
where id = $1::uuid and owner_id = $2::uuid;
`
