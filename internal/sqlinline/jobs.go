package sqlinline

const QEnqueueJob = `--sql f38a9fa1-ec35-4dba-9abf-e46560187755
insert into wishlist_jobs (id, task_type, item_id, payload, status, attempts, run_at, created_at, updated_at)
values ($1::text, $2::text, $3::text, $4::jsonb, 'QUEUED', 0, now(), now(), now());
`

const QClaimJob = `--sql d23d9b77-9d84-4739-afe5-8afddc7e9c2b
with next_job as (
    select id
    from wishlist_jobs
    where status = 'QUEUED' and run_at <= now()
    order by id asc
    for update skip locked
    limit 1
),
claimed as (
    update wishlist_jobs
    set status = 'RUNNING', attempts = attempts + 1, updated_at = now()
    where id in (select id from next_job)
    returning id, task_type, item_id, payload, attempts
)
select * from claimed;
`

const QCompleteJob = `--sql 49ead9b5-25b8-4a22-a7a9-abc0c293ef6a
update wishlist_jobs
set status = $2::text, result_json = $3::jsonb, updated_at = now()
where id = $1::text;
`

const QRequeueJob = `--sql 50e05d23-9e10-4c68-bb8c-72184c3a08cd
update wishlist_jobs
set status = 'QUEUED',
    run_at = now() + make_interval(secs => $2::int),
    result_json = $3::jsonb,
    updated_at = now()
where id = $1::text;
`
