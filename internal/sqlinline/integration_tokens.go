package sqlinline

const QSelectIntegrationToken = `--sql 318ac0a2-711b-4b2d-bf19-68545a90a158
select token from integration_tokens where provider = $1::text;
`

const QUpsertIntegrationToken = `--sql 7019354d-5df5-4421-a4b3-f93329d0cbe8
insert into integration_tokens (provider, token, properties, updated_at)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now())
on conflict (provider) do update
set token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
