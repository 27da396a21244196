package service

// HelpText is returned for the help token.
const HelpText = `filter_50 help
Filters:
- diff(ds) difficulty constant: diff12+ / ds=12.6 / diff12+-13.1 / ds=12.1~ / diff～13
- star DX stars: star0 / star=1 / star1-3 / star=2~ / star～3
- achv achievement: achv99.5-100.4999 / achv=99.5~ / achv～100
- lv level: lv绿 / lv=黄 / lv红-紫 / lv=紫~ / lv～白
- cat category: cat=anime / cat=maimai+game [anime, maimai, niconico, touhou, game, ongeki]
- alias song alias: alias=海底谭 / alias=xx+yy
Ordering (largest first):
- cmp: cmpra / cmp=achv / cmp=slide/note
  + record: ra (default) / achv / dxs DX score ratio / cun close miss / suo lock distance
  + chart: diff(ds) / bpm / fit fitted difficulty gap / id
  + notes: tap / hold / slide / touch / break / note
  + cun and suo work best with an achv range
- rev reverse the order
Modes:
- fit recompute ratings with fitted difficulties
- x50 fill every slot with the single best record
Account: qq=<id> or user=<name>
Example: f50 diff12-13 star=1 achv～100 cmp=achv rev`
