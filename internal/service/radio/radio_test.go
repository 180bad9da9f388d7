package radio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avtopology/internal/future"
	"avtopology/internal/models"
	"avtopology/internal/service"
	"avtopology/internal/service/servicetest"
)

func presets() Config {
	cfg := DefaultConfig()
	cfg.Channels = []Channel{
		{Id: 1, Uri: "http://radio/one", Metadata: "One FM"},
		{Id: 2, Uri: "http://radio/two", Metadata: "Two FM"},
	}
	return cfg
}

func TestTuneAndPlay(t *testing.T) {
	th := servicetest.NewThread(t)
	d := service.NewDevice(th, "ds1")
	d.Add(NewMock(d, presets()))
	p := servicetest.Proxy[*Proxy](t, th, d, Kind)

	// nothing tuned yet
	_, err := servicetest.Await(t, th, p.Play)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = servicetest.Await(t, th, func() future.Future[struct{}] { return p.SetId(2, "") })
	require.NoError(t, err)
	_, err = servicetest.Await(t, th, p.Play)
	require.NoError(t, err)

	th.Execute(func() {
		assert.Equal(t, uint32(2), p.Id().Value())
		assert.Equal(t, "http://radio/two", p.Uri().Value())
		assert.Equal(t, "Two FM", p.Metadata().Value())
		assert.Equal(t, models.TransportStatePlaying, p.TransportState().Value())
		assert.Equal(t, []uint32{1, 2}, p.IdArray().Value())
	})

	_, err = servicetest.Await(t, th, func() future.Future[struct{}] { return p.SetId(7, "") })
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = servicetest.Await(t, th, func() future.Future[struct{}] { return p.SetChannel("http://adhoc", "Adhoc") })
	require.NoError(t, err)
	th.Execute(func() {
		assert.Equal(t, uint32(0), p.Id().Value())
		assert.Equal(t, "http://adhoc", p.Uri().Value())
	})

	ch, err := servicetest.Await(t, th, func() future.Future[Channel] { return p.Read(1) })
	require.NoError(t, err)
	assert.Equal(t, "One FM", ch.Metadata)

	list, err := servicetest.Await(t, th, func() future.Future[[]Channel] { return p.ReadList([]uint32{2, 3, 1}) })
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = servicetest.Await(t, th, p.Stop)
	require.NoError(t, err)
	th.Execute(func() {
		assert.Equal(t, models.TransportStateStopped, p.TransportState().Value())
		p.Dispose()
	})
}

func TestScript(t *testing.T) {
	th := servicetest.NewThread(t)
	d := service.NewDevice(th, "ds1")
	d.Add(NewMock(d, presets()))
	p := servicetest.Proxy[*Proxy](t, th, d, Kind)

	for _, line := range []string{
		"radio id 2",
		"radio idarray 1 2 3",
		"radio transportstate Buffering",
		"radio metadata Late Night Jazz",
		"radio uri http://radio/three",
		"radio channelsmax 50",
		"radio protocolinfo http-get:*:*:*",
	} {
		require.NoError(t, servicetest.Exec(t, th, d, line), line)
	}
	assert.ErrorIs(t, servicetest.Exec(t, th, d, "radio volume 3"), models.ErrNotSupported)

	th.Execute(func() {
		assert.Equal(t, uint32(2), p.Id().Value())
		assert.Equal(t, []uint32{1, 2, 3}, p.IdArray().Value())
		assert.Equal(t, models.TransportStateBuffering, p.TransportState().Value())
		assert.Equal(t, "Late Night Jazz", p.Metadata().Value())
		assert.Equal(t, "http://radio/three", p.Uri().Value())
		assert.Equal(t, uint32(50), p.ChannelsMax())
		assert.Equal(t, "http-get:*:*:*", p.ProtocolInfo())
	})

	// scripted ids become tunable presets
	_, err := servicetest.Await(t, th, func() future.Future[struct{}] { return p.SetId(3, "http://radio/3") })
	require.NoError(t, err)
	th.Execute(func() { p.Dispose() })
}

func TestNetworkService(t *testing.T) {
	th := servicetest.NewThread(t)
	d := service.NewDevice(th, "ds2")
	client := servicetest.NewClient()
	client.Outputs["ReadList"] = map[string]string{"ChannelList": `[{"id":4,"uri":"http://four","metadata":"Four"}]`}
	d.Add(NewNetwork(d, client))

	p := servicetest.Proxy[*Proxy](t, th, d, Kind, func() {
		client.Emit(t, "ds2", "radio", map[string]string{
			"Id": "4", "IdArray": "3 4", "TransportState": "Paused", "Uri": "http://four", "ChannelsMax": "64",
		})
	})
	th.Execute(func() {
		assert.Equal(t, uint32(4), p.Id().Value())
		assert.Equal(t, models.TransportStatePaused, p.TransportState().Value())
		assert.Equal(t, uint32(64), p.ChannelsMax())
	})

	_, err := servicetest.Await(t, th, func() future.Future[struct{}] { return p.SetId(3, "http://three") })
	require.NoError(t, err)
	list, err := servicetest.Await(t, th, func() future.Future[[]Channel] { return p.ReadList([]uint32{4}) })
	require.NoError(t, err)
	assert.Equal(t, []Channel{{Id: 4, Uri: "http://four", Metadata: "Four"}}, list)

	calls := client.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "SetId", calls[0].Action)
	assert.Equal(t, map[string]string{"Value": "3", "Uri": "http://three"}, calls[0].Args)

	th.Execute(func() { p.Dispose() })
}
