package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"diskregistry/internal/model"
	"diskregistry/pkg/log"

	"github.com/duke-git/lancet/v2/slice"
	"go.uber.org/zap"
)

type eraseOp struct {
	deviceIds []string
}

type cleanupOp struct {
	candidates []string
}

// notifyInFlight 磁盘通知的推送状态；失败后保留条目，retryAt 之前不再推送
type notifyInFlight struct {
	seqNo     uint64
	startedAt time.Time
	inFlight  bool
	failures  int
	retryAt   time.Time
}

// Registry 单线程事件循环，所有状态读写都在 loop 中串行执行
// 慢操作（擦除、卷目录确认、通知推送）在独立 goroutine 中执行，结果作为命令回送
type Registry struct {
	cfg      Config
	logger   *log.Logger
	store    StateStore
	state    *State
	eraser   Eraser
	sessions SessionManager
	volumes  VolumeDirectory
	notifier Notifier
	cookies  CookieGenerator
	now      func() time.Time

	commands chan request
	internal chan any
	done     chan struct{}
	loopCtx  context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.Mutex
	stopOnce sync.Once

	// 仅在 loop 中访问
	pending        map[uint64]any
	erasing        map[string]uint64
	cleanupCookie  uint64
	cleanupWaiters []chan response
	notifying      map[string]notifyInFlight
}

func NewRegistry(
	cfg Config,
	logger *log.Logger,
	store StateStore,
	eraser Eraser,
	sessions SessionManager,
	volumes VolumeDirectory,
	notifier Notifier,
	cookies CookieGenerator,
) *Registry {
	queue := cfg.CommandQueueSize
	if queue <= 0 {
		queue = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		state:     NewState(cfg, logger, store),
		eraser:    eraser,
		sessions:  sessions,
		volumes:   volumes,
		notifier:  notifier,
		cookies:   cookies,
		now:       time.Now,
		commands:  make(chan request, queue),
		internal:  make(chan any, queue),
		done:      make(chan struct{}),
		loopCtx:   ctx,
		cancel:    cancel,
		pending:   make(map[uint64]any),
		erasing:   make(map[string]uint64),
		notifying: make(map[string]notifyInFlight),
	}
}

// WithClock 替换时钟，需在 Start 之前调用
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Start 加载持久化状态，重置所有会话后启动事件循环
func (r *Registry) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}
	snap, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load registry state: %w", err)
	}
	r.state.Load(snap)
	if err := r.state.ResetSessions(ctx, r.now()); err != nil {
		return fmt.Errorf("reset agent sessions: %w", err)
	}
	r.started = true
	r.logger.Info("registry started",
		zap.Int("agents", r.state.agents.len()),
		zap.Int("devices", r.state.devices.len()),
		zap.Int("disks", r.state.disks.len()),
		zap.Bool("writable", r.state.Writable()))
	go r.loop()
	return nil
}

// Stop 停止事件循环，排队中的命令返回 ErrRejected
func (r *Registry) Stop(ctx context.Context) error {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		started := r.started
		r.mu.Unlock()
		r.eraser.Stop()
		r.cancel()
		if !started {
			close(r.done)
			r.rejectQueued()
		}
	})
	select {
	case <-r.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	r.logger.Info("registry stopped")
	return nil
}

func (r *Registry) loop() {
	defer func() {
		close(r.done)
		r.rejectQueued()
		for _, w := range r.cleanupWaiters {
			w <- response{err: ErrRejected}
		}
		r.cleanupWaiters = nil
	}()
	r.afterCommand()
	for {
		select {
		case <-r.loopCtx.Done():
			return
		case req := <-r.commands:
			resp, deferred := r.handle(req)
			// 先断开旧会话再回复，调用方随后登记的新会话不会被误断
			r.afterCommand()
			if !deferred {
				req.resp <- resp
			}
		case ev := <-r.internal:
			r.handleInternal(ev)
			r.afterCommand()
		}
	}
}

func (r *Registry) rejectQueued() {
	for {
		select {
		case req := <-r.commands:
			req.resp <- response{err: ErrRejected}
		default:
			return
		}
	}
}

func (r *Registry) call(ctx context.Context, cmd any) (any, error) {
	req := request{cmd: cmd, resp: make(chan response, 1)}
	select {
	case <-r.done:
		return nil, ErrRejected
	default:
	}
	select {
	case r.commands <- req:
	case <-r.done:
		return nil, ErrRejected
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case resp := <-req.resp:
		return resp.value, resp.err
	case <-r.done:
		// loop 退出前可能已经写入了结果
		select {
		case resp := <-req.resp:
			return resp.value, resp.err
		default:
			return nil, ErrRejected
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// post 异步操作结果回送 loop，loop 退出后丢弃
func (r *Registry) post(ev any) {
	select {
	case r.internal <- ev:
	case <-r.loopCtx.Done():
	}
}

func (r *Registry) handle(req request) (response, bool) {
	ctx, now, s := r.loopCtx, r.now(), r.state
	switch cmd := req.cmd.(type) {
	case registerAgentCmd:
		agent, err := s.RegisterAgent(ctx, now, cmd.cfg)
		return reply(agent, err)
	case agentDisconnectedCmd:
		err := s.AgentDisconnected(ctx, now, cmd.agentId, cmd.nodeId)
		if err == nil {
			r.abandonErase(cmd.agentId)
		}
		return reply(nil, err)
	case updateAgentStatsCmd:
		return reply(nil, s.UpdateAgentStats(ctx, now, cmd.agentId, cmd.stats))
	case changeAgentStateCmd:
		return reply(nil, s.ChangeAgentState(ctx, now, cmd.agentId, cmd.state, cmd.message))
	case changeDeviceStateCmd:
		return reply(nil, s.ChangeDeviceState(ctx, now, cmd.deviceId, cmd.state, cmd.message))
	case suspendDeviceCmd:
		if cmd.suspended {
			return reply(nil, s.SuspendDevice(ctx, now, cmd.deviceId))
		}
		return reply(nil, s.ResumeDevice(ctx, now, cmd.deviceId))
	case allocateDiskCmd:
		disk, err := s.AllocateDisk(ctx, now, cmd.req)
		return reply(disk, err)
	case markDiskForCleanupCmd:
		return reply(nil, s.MarkDiskForCleanup(ctx, now, cmd.diskId))
	case deallocateDiskCmd:
		return reply(nil, s.DeallocateDisk(ctx, now, cmd.diskId, cmd.force))
	case replaceDeviceCmd:
		disk, err := s.ReplaceDevice(ctx, now, cmd.diskId, cmd.deviceId)
		return reply(disk, err)
	case finishMigrationCmd:
		return reply(nil, s.FinishMigration(ctx, now, cmd.diskId, cmd.sourceId, cmd.targetId))
	case cmsActionCmd:
		res, err := s.CmsAction(ctx, now, cmd.action)
		return reply(res, err)
	case createPlacementGroupCmd:
		return reply(nil, s.CreatePlacementGroup(ctx, now, cmd.groupId))
	case destroyPlacementGroupCmd:
		return reply(nil, s.DestroyPlacementGroup(ctx, now, cmd.groupId))
	case setWritableStateCmd:
		return reply(nil, s.SetWritableState(ctx, now, cmd.writable))
	case tickCmd:
		return reply(nil, s.Tick(ctx, now))
	case cleanupDisksCmd:
		return r.startCleanup(req.resp)
	case describeDiskCmd:
		disk, ok := s.Disk(cmd.diskId)
		if !ok {
			return reply(nil, fmt.Errorf("%w: disk %s", ErrNotFound, cmd.diskId))
		}
		return reply(disk, nil)
	case describeAgentCmd:
		agent, ok := s.Agent(cmd.agentId)
		if !ok {
			return reply(nil, fmt.Errorf("%w: agent %s", ErrNotFound, cmd.agentId))
		}
		return reply(agent, nil)
	case findDeviceCmd:
		dev, err := s.FindDevice(cmd.deviceId)
		return reply(dev, err)
	case listAgentsCmd:
		return reply(s.ListAgents(), nil)
	case listDevicesCmd:
		return reply(s.ListDevices(cmd.filter), nil)
	case listPlacementGroupsCmd:
		return reply(s.ListPlacementGroups(), nil)
	case listDisksToNotifyCmd:
		return reply(s.ListDisksToNotify(), nil)
	case listDirtyDevicesCmd:
		return reply(s.DirtyDevices(), nil)
	}
	return reply(nil, fmt.Errorf("unknown command %T", req.cmd))
}

func reply(value any, err error) (response, bool) {
	return response{value: value, err: err}, false
}

func (r *Registry) handleInternal(ev any) {
	switch ev := ev.(type) {
	case eraseDoneCmd:
		r.onEraseDone(ev)
	case cleanupConfirmedCmd:
		r.onCleanupConfirmed(ev)
	case notifyDoneCmd:
		r.onNotifyDone(ev)
	default:
		r.logger.Error("unknown internal event", zap.String("type", fmt.Sprintf("%T", ev)))
	}
}

// afterCommand 每个命令之后执行：断开被取代的会话，调度擦除与通知
func (r *Registry) afterCommand() {
	for _, d := range r.state.TakeDroppedSessions() {
		r.sessions.DropSession(d.AgentId, d.NodeId)
	}
	r.dispatchErase()
	r.dispatchNotifications()
}

func (r *Registry) newCookie() (uint64, error) {
	cookie, err := r.cookies.GenUint64()
	if err != nil {
		return 0, fmt.Errorf("generate cookie: %w", err)
	}
	return cookie, nil
}

func (r *Registry) dispatchErase() {
	limit := r.cfg.SecureEraseMaxInFlight - len(r.erasing)
	if r.cfg.SecureEraseMaxInFlight <= 0 {
		limit = r.state.dirty.len()
	}
	reqs := r.state.DevicesToErase(r.now(), func(id string) bool {
		_, ok := r.erasing[id]
		return ok
	}, limit)
	if len(reqs) == 0 {
		return
	}
	cookie, err := r.newCookie()
	if err != nil {
		r.logger.Error("secure erase not dispatched", zap.Error(err))
		return
	}
	ids := make([]string, 0, len(reqs))
	for _, req := range reqs {
		ids = append(ids, req.DeviceId)
		r.erasing[req.DeviceId] = cookie
	}
	r.pending[cookie] = &eraseOp{deviceIds: ids}
	r.logger.Info("secure erase dispatched", zap.Uint64("cookie", cookie), zap.Strings("device_ids", ids))

	go func() {
		ctx, cancel := context.WithTimeout(r.loopCtx, r.cfg.SecureEraseTimeout)
		defer cancel()
		erased, err := r.eraser.SecureErase(ctx, reqs)
		r.post(eraseDoneCmd{cookie: cookie, erased: erased, err: err})
	}()
}

// abandonErase agent 断连后不再等待其设备的擦除结果
func (r *Registry) abandonErase(agentId string) {
	for deviceId := range r.erasing {
		dev, ok := r.state.devices.get(deviceId)
		if ok && dev.AgentId == agentId {
			delete(r.erasing, deviceId)
		}
	}
}

func (r *Registry) onEraseDone(ev eraseDoneCmd) {
	p, ok := r.pending[ev.cookie].(*eraseOp)
	if !ok {
		return
	}
	delete(r.pending, ev.cookie)
	var erased, failed []string
	for _, id := range p.deviceIds {
		if r.erasing[id] != ev.cookie {
			continue
		}
		delete(r.erasing, id)
		if slice.Contain(ev.erased, id) {
			erased = append(erased, id)
		} else {
			failed = append(failed, id)
		}
	}
	if ev.err != nil && !errors.Is(ev.err, ErrRejected) {
		r.logger.Warn("secure erase failed", zap.Uint64("cookie", ev.cookie), zap.Strings("device_ids", failed), zap.Error(ev.err))
	}
	now := r.now()
	if err := r.state.MarkDevicesErased(r.loopCtx, now, erased); err != nil {
		r.logger.Error("mark devices erased failed", zap.Error(err))
	}
	if err := r.state.MarkEraseFailed(r.loopCtx, now, failed); err != nil {
		r.logger.Error("mark erase failed", zap.Error(err))
	}
}

// startCleanup 并发的清理请求合并为一次卷目录确认
func (r *Registry) startCleanup(resp chan response) (response, bool) {
	if r.cleanupCookie != 0 {
		r.cleanupWaiters = append(r.cleanupWaiters, resp)
		return response{}, true
	}
	if err := r.state.checkWritable(); err != nil {
		return reply(nil, err)
	}
	candidates := r.state.DisksToCleanup()
	if len(candidates) == 0 {
		return reply([]string{}, nil)
	}
	cookie, err := r.newCookie()
	if err != nil {
		return reply(nil, err)
	}
	r.cleanupCookie = cookie
	r.cleanupWaiters = append(r.cleanupWaiters, resp)
	r.pending[cookie] = &cleanupOp{candidates: candidates}

	go func() {
		ctx, cancel := context.WithTimeout(r.loopCtx, r.cfg.VolumeDirectoryTimeout)
		defer cancel()
		referenced, err := r.volumes.ReferencedDisks(ctx, candidates)
		r.post(cleanupConfirmedCmd{cookie: cookie, candidates: candidates, referenced: referenced, err: err})
	}()
	return response{}, true
}

func (r *Registry) onCleanupConfirmed(ev cleanupConfirmedCmd) {
	if _, ok := r.pending[ev.cookie].(*cleanupOp); !ok {
		return
	}
	delete(r.pending, ev.cookie)
	r.cleanupCookie = 0
	waiters := r.cleanupWaiters
	r.cleanupWaiters = nil

	reply := response{}
	if ev.err != nil {
		r.logger.Warn("volume directory confirmation failed", zap.Error(ev.err))
		reply.err = fmt.Errorf("confirm disks with volume directory: %w", ev.err)
	} else {
		released := slice.Difference(ev.candidates, ev.referenced)
		removed, err := r.state.ReleaseDisks(r.loopCtx, r.now(), released)
		if removed == nil {
			removed = []string{}
		}
		reply = response{value: removed, err: err}
	}
	for _, w := range waiters {
		w <- reply
	}
}

// dispatchNotifications 推送未确认的磁盘状态，超时未完成的重新推送
func (r *Registry) dispatchNotifications() {
	now := r.now()
	pending := r.state.PendingNotifications()
	pendingIds := make(map[string]struct{}, len(pending))
	for _, n := range pending {
		pendingIds[n.DiskId] = struct{}{}
	}
	for diskId, cur := range r.notifying {
		if _, ok := pendingIds[diskId]; !ok && !cur.inFlight {
			delete(r.notifying, diskId)
		}
	}
	for _, n := range pending {
		cur, ok := r.notifying[n.DiskId]
		if ok && cur.inFlight && cur.seqNo == n.SeqNo && now.Sub(cur.startedAt) < r.cfg.NotificationTimeout {
			continue
		}
		if ok && !cur.inFlight && now.Before(cur.retryAt) {
			continue
		}
		disk, ok := r.state.disks.get(n.DiskId)
		if !ok {
			continue
		}
		msg := DiskStateNotification{
			DiskId:       disk.DiskId,
			SeqNo:        n.SeqNo,
			IoMode:       disk.IoMode,
			MuteIoErrors: disk.MuteIoErrors,
			State:        disk.State,
		}
		r.notifying[n.DiskId] = notifyInFlight{seqNo: n.SeqNo, startedAt: now, inFlight: true, failures: cur.failures}
		go func() {
			ctx, cancel := context.WithTimeout(r.loopCtx, r.cfg.NotificationTimeout)
			defer cancel()
			err := r.notifier.NotifyDiskState(ctx, msg)
			r.post(notifyDoneCmd{diskId: msg.DiskId, seqNo: msg.SeqNo, err: err})
		}()
	}
}

func (r *Registry) onNotifyDone(ev notifyDoneCmd) {
	cur, ok := r.notifying[ev.diskId]
	current := ok && cur.inFlight && cur.seqNo == ev.seqNo
	if ev.err != nil {
		if !current {
			return
		}
		cur.inFlight = false
		cur.failures++
		delay := r.notifyRetryDelay(cur.failures)
		cur.retryAt = r.now().Add(delay)
		r.notifying[ev.diskId] = cur
		r.logger.Warn("disk state notification failed",
			zap.String("disk_id", ev.diskId),
			zap.Uint64("seq_no", ev.seqNo),
			zap.Int("failures", cur.failures),
			zap.Duration("retry_in", delay),
			zap.Error(ev.err))
		return
	}
	if current {
		delete(r.notifying, ev.diskId)
	}
	if err := r.state.ConfirmNotification(r.loopCtx, ev.diskId, ev.seqNo); err != nil {
		r.logger.Error("confirm notification failed", zap.String("disk_id", ev.diskId), zap.Error(err))
	}
}

// notifyRetryDelay 第 n 次失败后的等待时间，按 2 倍增长直到上限
func (r *Registry) notifyRetryDelay(failures int) time.Duration {
	delay := r.cfg.NotificationRetryBackoff
	if delay <= 0 {
		delay = time.Second
	}
	for i := 1; i < failures && delay < r.cfg.NotificationMaxRetryBackoff; i++ {
		delay *= 2
	}
	if r.cfg.NotificationMaxRetryBackoff > 0 && delay > r.cfg.NotificationMaxRetryBackoff {
		delay = r.cfg.NotificationMaxRetryBackoff
	}
	return delay
}

func (r *Registry) RegisterAgent(ctx context.Context, cfg AgentConfig) (*model.Agent, error) {
	v, err := r.call(ctx, registerAgentCmd{cfg: cfg})
	if err != nil {
		return nil, err
	}
	return v.(*model.Agent), nil
}

// AgentDisconnected 传输层会话断开时调用
func (r *Registry) AgentDisconnected(ctx context.Context, agentId string, nodeId uint32) error {
	_, err := r.call(ctx, agentDisconnectedCmd{agentId: agentId, nodeId: nodeId})
	return err
}

func (r *Registry) UpdateAgentStats(ctx context.Context, agentId string, stats []DeviceStats) error {
	_, err := r.call(ctx, updateAgentStatsCmd{agentId: agentId, stats: stats})
	return err
}

func (r *Registry) ChangeAgentState(ctx context.Context, agentId string, state model.AgentState, message string) error {
	_, err := r.call(ctx, changeAgentStateCmd{agentId: agentId, state: state, message: message})
	return err
}

func (r *Registry) ChangeDeviceState(ctx context.Context, deviceId string, state model.DeviceState, message string) error {
	_, err := r.call(ctx, changeDeviceStateCmd{deviceId: deviceId, state: state, message: message})
	return err
}

func (r *Registry) SuspendDevice(ctx context.Context, deviceId string) error {
	_, err := r.call(ctx, suspendDeviceCmd{deviceId: deviceId, suspended: true})
	return err
}

func (r *Registry) ResumeDevice(ctx context.Context, deviceId string) error {
	_, err := r.call(ctx, suspendDeviceCmd{deviceId: deviceId})
	return err
}

func (r *Registry) AllocateDisk(ctx context.Context, req AllocateRequest) (*model.Disk, error) {
	v, err := r.call(ctx, allocateDiskCmd{req: req})
	if err != nil {
		return nil, err
	}
	return v.(*model.Disk), nil
}

func (r *Registry) MarkDiskForCleanup(ctx context.Context, diskId string) error {
	_, err := r.call(ctx, markDiskForCleanupCmd{diskId: diskId})
	return err
}

func (r *Registry) DeallocateDisk(ctx context.Context, diskId string, force bool) error {
	_, err := r.call(ctx, deallocateDiskCmd{diskId: diskId, force: force})
	return err
}

func (r *Registry) ReplaceDevice(ctx context.Context, diskId, deviceId string) (*model.Disk, error) {
	v, err := r.call(ctx, replaceDeviceCmd{diskId: diskId, deviceId: deviceId})
	if err != nil {
		return nil, err
	}
	return v.(*model.Disk), nil
}

func (r *Registry) FinishMigration(ctx context.Context, diskId, sourceId, targetId string) error {
	_, err := r.call(ctx, finishMigrationCmd{diskId: diskId, sourceId: sourceId, targetId: targetId})
	return err
}

func (r *Registry) CmsAction(ctx context.Context, action CmsAction) (*CmsActionResult, error) {
	v, err := r.call(ctx, cmsActionCmd{action: action})
	if err != nil {
		return nil, err
	}
	return v.(*CmsActionResult), nil
}

func (r *Registry) CreatePlacementGroup(ctx context.Context, groupId string) error {
	_, err := r.call(ctx, createPlacementGroupCmd{groupId: groupId})
	return err
}

func (r *Registry) DestroyPlacementGroup(ctx context.Context, groupId string) error {
	_, err := r.call(ctx, destroyPlacementGroupCmd{groupId: groupId})
	return err
}

func (r *Registry) SetWritableState(ctx context.Context, writable bool) error {
	_, err := r.call(ctx, setWritableStateCmd{writable: writable})
	return err
}

// Tick 由定时任务驱动
func (r *Registry) Tick(ctx context.Context) error {
	_, err := r.call(ctx, tickCmd{})
	return err
}

// CleanupDisks 释放已标记且不再被卷引用的磁盘，返回被删除的磁盘
func (r *Registry) CleanupDisks(ctx context.Context) ([]string, error) {
	v, err := r.call(ctx, cleanupDisksCmd{})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (r *Registry) DescribeDisk(ctx context.Context, diskId string) (*model.Disk, error) {
	v, err := r.call(ctx, describeDiskCmd{diskId: diskId})
	if err != nil {
		return nil, err
	}
	return v.(*model.Disk), nil
}

func (r *Registry) DescribeAgent(ctx context.Context, agentId string) (*model.Agent, error) {
	v, err := r.call(ctx, describeAgentCmd{agentId: agentId})
	if err != nil {
		return nil, err
	}
	return v.(*model.Agent), nil
}

func (r *Registry) FindDevice(ctx context.Context, deviceId string) (*model.Device, error) {
	v, err := r.call(ctx, findDeviceCmd{deviceId: deviceId})
	if err != nil {
		return nil, err
	}
	return v.(*model.Device), nil
}

func (r *Registry) ListAgents(ctx context.Context) ([]*model.Agent, error) {
	v, err := r.call(ctx, listAgentsCmd{})
	if err != nil {
		return nil, err
	}
	return v.([]*model.Agent), nil
}

func (r *Registry) ListDevices(ctx context.Context, filter DeviceFilter) ([]*model.Device, error) {
	v, err := r.call(ctx, listDevicesCmd{filter: filter})
	if err != nil {
		return nil, err
	}
	return v.([]*model.Device), nil
}

func (r *Registry) ListPlacementGroups(ctx context.Context) ([]*model.PlacementGroup, error) {
	v, err := r.call(ctx, listPlacementGroupsCmd{})
	if err != nil {
		return nil, err
	}
	return v.([]*model.PlacementGroup), nil
}

func (r *Registry) ListDisksToNotify(ctx context.Context) ([]string, error) {
	v, err := r.call(ctx, listDisksToNotifyCmd{})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (r *Registry) ListDirtyDevices(ctx context.Context) ([]*model.DirtyDevice, error) {
	v, err := r.call(ctx, listDirtyDevicesCmd{})
	if err != nil {
		return nil, err
	}
	return v.([]*model.DirtyDevice), nil
}
