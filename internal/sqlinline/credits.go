package sqlinline

// QDebitCredits is the atomic conditional decrement: it only fires when the
// balance covers the amount, so concurrent submissions can never drive the
// balance negative. No returned row means the balance was short.
const QDebitCredits = `--sql b08b0f86-8cd6-4321-ad91-f112edb97d95
update profiles
set credits = credits - $2::int,
    updated_at = now()
where id = $1::uuid and credits >= $2::int
returning credits;
`

const QAddCredits = `--sql f824b5a1-4248-49c3-b2dd-8eaaf11366ad
update profiles
set credits = credits + $2::int,
    updated_at = now()
where id = $1::uuid
returning credits;
`

const QSelectCreditBalance = `--sql 9a6e5bc0-fe0b-4e03-9d7f-c2cdc2495dc5
select credits from profiles where id = $1::uuid;
`

const QInsertCreditEntry = `--sql b6dd10ee-2d2f-46b9-b566-f55a1c883e7e
insert into credit_ledger (id, user_id, entry_type, amount, balance_after, job_id, description, created_at)
values (gen_random_uuid(), $1::uuid, $2::text, $3::int, $4::int, $5::uuid, $6::text, now());
`

const QSelectCreditHistory = `--sql b29dcc32-9882-48c8-9f27-cb0712ca2a6a
select id, user_id, entry_type, amount, balance_after, job_id, description, created_at
from credit_ledger
where user_id = $1::uuid
order by created_at desc
limit $2::int;
`
