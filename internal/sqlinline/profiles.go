package sqlinline

const QSelectProfile = `--sql 0a829301-6f1d-4fd8-af27-0eb8a16dc30d
select id, email, name, plan, credits, country, signup_bonus_at, created_at, updated_at
from profiles
where id = $1::uuid;
`

const QUpsertProfile = `--sql 7ebff91f-03fb-4e24-8fef-e2d658df3f1a
insert into profiles (id, email, name, plan, credits, country)
values ($1::uuid, $2::text, $3::text, coalesce(nullif($4::text, ''), 'free'), 0, $5::text)
on conflict (id) do update
set email = excluded.email,
    name = excluded.name,
    country = coalesce(nullif(excluded.country, ''), profiles.country),
    updated_at = now()
returning id, email, name, plan, credits, country, signup_bonus_at, created_at, updated_at;
`

const QGrantSignupBonus = `--sql 58a5011f-109b-4995-a449-0dc0573d22a9
update profiles
set credits = credits + $2::int,
    signup_bonus_at = now(),
    updated_at = now()
where id = $1::uuid and signup_bonus_at is null
returning credits;
`
