package thunder

import "github.com/vovakirdan/tui-danmaku/internal/dialog"

const (
	actorPlayer = "Pilot"
	actorBoss   = "Herald"
)

func postMidbossDialog() *dialog.Script {
	return dialog.NewScript("thunder.post_midboss").
		MsgTimeout(actorPlayer, 90, "That spirit ran off towards the clouds.").
		MsgTimeout(actorPlayer, 90, "Something bigger is waiting up there.")
}

func preBossDialog() *dialog.Script {
	return dialog.NewScript("thunder.pre_boss").
		Msg(actorPlayer, "The air is crackling. Show yourself!").
		Event(dialog.EventBossAppears).
		Msg(actorBoss, "You climbed all the way into the storm just to shout at it?").
		Msg(actorPlayer, "I climbed up here to make it stop.").
		Event(dialog.EventMusicChanges).
		Msg(actorBoss, "Then feel how loud it can get.")
}

func postBossDialog() *dialog.Script {
	return dialog.NewScript("thunder.post_boss").
		Msg(actorBoss, "The clouds are parting... you actually did it.").
		Msg(actorPlayer, "Finally some quiet.")
}
